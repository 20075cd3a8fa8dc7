// Package presentation holds the text shared by the web pages and the terminal runner.
package presentation

// Labels shown to the user.
const (
	TitleName             = "Name"
	TitleEmail            = "Email"
	TitleSummary          = "Summary"
	TitleBasicInformation = "Basic Information"
	TitleDriverDetails    = "Driver Details"
	TitleNumber           = "Number"
	TitleCode             = "Code"
	TitleCurrentStanding  = "Current Standing"
	TitlePoints           = "Points"
	TitleWins             = "Wins"
	TitleTeam             = "Team"
	TitleSelectDriver     = "Select Driver"
	TitleSelectADriver    = "Select a driver"

	ButtonBack  = "Back"
	ButtonNext  = "Next"
	ButtonClear = "Clear"
)

package domain

import "strings"

// Driver is a racing driver as described by the remote statistics API.
// Only DriverID is guaranteed; the rest may be missing in the payload.
type Driver struct {
	DriverID        string `json:"driverId" yaml:"driverId"`
	PermanentNumber string `json:"permanentNumber,omitempty" yaml:"permanentNumber,omitempty"`
	Code            string `json:"code,omitempty" yaml:"code,omitempty"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	GivenName       string `json:"givenName,omitempty" yaml:"givenName,omitempty"`
	FamilyName      string `json:"familyName,omitempty" yaml:"familyName,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty" yaml:"dateOfBirth,omitempty"`
	Nationality     string `json:"nationality,omitempty" yaml:"nationality,omitempty"`
}

// FullName returns "GivenName FamilyName", trimmed.
func (d Driver) FullName() string {
	return strings.TrimSpace(d.GivenName + " " + d.FamilyName)
}

// Constructor is the team a driver raced for in a standings snapshot.
type Constructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

// DriverStanding is a read-only ranking snapshot for one driver.
// The API sends numbers as strings, so they are kept verbatim.
type DriverStanding struct {
	Position     string        `json:"position"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

// FindDriver looks a driver up by ID.
func FindDriver(drivers []Driver, id string) (*Driver, bool) {
	if id == "" {
		return nil, false
	}
	for i := range drivers {
		if drivers[i].DriverID == id {
			d := drivers[i]
			return &d, true
		}
	}
	return nil, false
}

// FindStanding returns the standing whose driver matches driverID.
func FindStanding(standings []DriverStanding, driverID string) (*DriverStanding, bool) {
	for i := range standings {
		if standings[i].Driver.DriverID == driverID {
			s := standings[i]
			return &s, true
		}
	}
	return nil, false
}

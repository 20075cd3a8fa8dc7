package domain

// Validation error keys, as exposed to views and over JSON.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldSelectDriver = "selectDriver"
)

// FallbackErrorMessage is shown whenever a fetch fails without a usable detail.
const FallbackErrorMessage = "Failed to fetch data. Please try again later."

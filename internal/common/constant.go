package common

// DefaultCategory is stored for a credential saved without a category, on
// both sides of the API.
const DefaultCategory = "personal"

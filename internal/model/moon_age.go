package model

// A MoonAge caches the moon age of a calendar day.
type MoonAge struct {
	Base `json:",inline" storm:"inline"`

	// Date is formatted as YYYY-MM-DD.
	Date string  `json:"date" storm:"unique"`
	Age  float64 `json:"age"`
}

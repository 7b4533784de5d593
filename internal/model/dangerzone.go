package model

// DangerZone is a location where the user has repeatedly made purchases they regret.
type DangerZone struct {
	Merchant    string  `json:"merchant"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	RegretCount int     `json:"regret_count"`
}

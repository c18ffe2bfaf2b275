package models

// Quantity defines the unit and numeric value of an offered batch.
type Quantity struct {
	Unit  string  `bson:"unit" json:"unit"` // e.g. kg, boxes, meals
	Value float64 `bson:"value" json:"value"`
}

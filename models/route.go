package models

import "gorm.io/datatypes"

// Route is a named group of delivery areas served by at most one worker.
// CustomerCount is a denormalized counter maintained on customer assignment.
type Route struct {
	Base
	Name          string                      `json:"name" gorm:"not null"`
	WorkerID      *string                     `json:"worker_id" gorm:"index;size:36"`
	WorkerName    string                      `json:"worker_name"`
	Areas         datatypes.JSONSlice[string] `json:"areas"`
	CustomerCount int                         `json:"customer_count" gorm:"not null;default:0"`
}

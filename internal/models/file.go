package models

import "time"

// FileStatus is the lifecycle state of a tracked file.
type FileStatus string

const (
	StatusUploaded FileStatus = "UPLOADED"
	StatusDeleted  FileStatus = "DELETED"
)

// MaxFilenameLen is the schema bound on the filename column. The sanitizer
// truncates to this length before a record is created.
const MaxFilenameLen = 100

// File is a metadata row tracking one object in the store. Rows are never
// physically removed; Delete flips Status to DELETED and leaves the row.
type File struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Filename    string     `json:"filename" gorm:"size:100;not null"` // object-store key
	Status      FileStatus `json:"status" gorm:"size:20;not null"`
	DateCreated time.Time  `json:"dateCreated" gorm:"column:date_created;autoCreateTime"`
}

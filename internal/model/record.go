package model

import (
	"errors"
	"fmt"
)

// FieldCount is the number of fields in every arrest row
const FieldCount = 12

// ErrFieldCount is returned when a row does not carry exactly FieldCount values
var ErrFieldCount = errors.New("wrong number of arrest fields")

// Columns lists the arrests table columns in field order
var Columns = [FieldCount]string{
	"datetime",
	"case_number",
	"arrests_location",
	"offense",
	"arrestee",
	"arrestee_birthday",
	"arrestee_address",
	"city",
	"state",
	"zip_code",
	"status",
	"officers",
}

// ArrestRecord is one row of the arrest summary report.
// All values are kept exactly as they appear in the source text; an empty
// string means the value was not present.
type ArrestRecord struct {
	Datetime         string `json:"datetime"`
	CaseNumber       string `json:"case_number"`
	ArrestsLocation  string `json:"arrests_location"`
	Offense          string `json:"offense"`
	Arrestee         string `json:"arrestee"`
	ArresteeBirthday string `json:"arrestee_birthday"`
	ArresteeAddress  string `json:"arrestee_address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	Status           string `json:"status"`
	Officers         string `json:"officers"`
}

// Fields returns the record values in column order
func (r ArrestRecord) Fields() []string {
	return []string{
		r.Datetime,
		r.CaseNumber,
		r.ArrestsLocation,
		r.Offense,
		r.Arrestee,
		r.ArresteeBirthday,
		r.ArresteeAddress,
		r.City,
		r.State,
		r.ZipCode,
		r.Status,
		r.Officers,
	}
}

// RecordFromFields builds a record from values given in column order
func RecordFromFields(fields []string) (ArrestRecord, error) {
	if len(fields) != FieldCount {
		return ArrestRecord{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), FieldCount)
	}

	return ArrestRecord{
		Datetime:         fields[0],
		CaseNumber:       fields[1],
		ArrestsLocation:  fields[2],
		Offense:          fields[3],
		Arrestee:         fields[4],
		ArresteeBirthday: fields[5],
		ArresteeAddress:  fields[6],
		City:             fields[7],
		State:            fields[8],
		ZipCode:          fields[9],
		Status:           fields[10],
		Officers:         fields[11],
	}, nil
}

package fixture

import (
	"fmt"

	"github.com/ppiankov/arrests/internal/model"
)

// SampleDateLayout is the layout of the report's Arrest Date / Time column
const SampleDateLayout = "01/02/2006 15:04"

var sampleOffenses = []string{
	"PUBLIC INTOXICATION",
	"DRIVING UNDER SUSPENSION",
	"WARRANT",
	"ASSAULT AND BATTERY",
	"LARCENY",
	"TRESPASSING",
}

var sampleOfficers = []string{
	"1622 - Graves;",
	"1694 - Sanchez;",
	"1714 - Keefe;",
	"1591 - Patterson;",
}

// SampleReport returns a header plus fifteen data rows dated between
// 2019-02-16 and 2019-02-24, together with the records a correct extraction
// yields. Row 3 wraps its offense on a trailing space, row 6 has an UNKNOWN
// address, and row 9 wraps its location on a hyphen.
func SampleReport() ([]Row, []model.ArrestRecord) {
	rows := []Row{HeaderRow()}
	var want []model.ArrestRecord

	for i := 0; i < 15; i++ {
		rec := model.ArrestRecord{
			Datetime:         fmt.Sprintf("02/%02d/2019 %02d:%02d", 16+i%9, (i*5)%24, (i*7)%60),
			CaseNumber:       fmt.Sprintf("2019-%08d", 3100+i*17),
			ArrestsLocation:  fmt.Sprintf("%d W MAIN ST", 100+i*10),
			Offense:          sampleOffenses[i%len(sampleOffenses)],
			Arrestee:         fmt.Sprintf("JOHN DOE %d", i+1),
			ArresteeBirthday: fmt.Sprintf("%02d/%02d/19%02d", 1+i%12, 1+i%28, 60+i),
			ArresteeAddress:  fmt.Sprintf("%d E LINDSEY ST", 200+i),
			City:             "NORMAN",
			State:            "OK",
			ZipCode:          "73069",
			Status:           "FDBDC",
			Officers:         sampleOfficers[i%len(sampleOfficers)],
		}
		row := RowFromRecord(rec)

		switch i {
		case 3:
			row[3] = []string{"POSSESSION OF ", "MARIJUANA"}
			rec.Offense = "POSSESSION OF MARIJUANA"
		case 6:
			row[6] = []string{"UNKNOWN"}
			row[7], row[8], row[9] = nil, nil, nil
			rec.ArresteeAddress = "UNKNOWN"
			rec.City, rec.State, rec.ZipCode = "", "", ""
		case 9:
			row[2] = []string{"1200 N PORTER-", "AVE"}
			rec.ArrestsLocation = "1200 N PORTER AVE"
		}

		rows = append(rows, row)
		want = append(want, rec)
	}

	return rows, want
}

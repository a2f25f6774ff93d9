package attendance

type Status string

const (
	Unset   Status = ""
	Present Status = "present"
	Absent  Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case Unset, Present, Absent:
		return true
	}
	return false
}

// Record is one stored attendance row.
type Record struct {
	StudentID int    `json:"student_id" db:"student_id"`
	DateID    int    `json:"date_id" db:"date_id"`
	Status    Status `json:"status" db:"status"`
}

// Sheet is the attendance grid of a course.
type Sheet struct {
	Marks map[int]map[int]Status `json:"attendance_data"` // student id -> date id -> status
	Stats map[int]int            `json:"stats"`           // student id -> attendance %
}

// Mark returns the status of a student on a date, Unset when nothing was recorded.
func (sh Sheet) Mark(studentID, dateID int) Status {
	return sh.Marks[studentID][dateID]
}

// BuildSheet merges records against the full date list of every student.
// Records for students or dates outside the lists are ignored, and so are unknown statuses.
func BuildSheet(studentIDs, dateIDs []int, records []Record) Sheet {
	byStudent := make(map[int]map[int]Status, len(studentIDs))
	for _, rec := range records {
		if !rec.Status.Valid() {
			continue
		}
		if byStudent[rec.StudentID] == nil {
			byStudent[rec.StudentID] = make(map[int]Status)
		}
		byStudent[rec.StudentID][rec.DateID] = rec.Status
	}

	sheet := Sheet{
		Marks: make(map[int]map[int]Status, len(studentIDs)),
		Stats: make(map[int]int, len(studentIDs)),
	}
	for _, sid := range studentIDs {
		recorded := byStudent[sid]
		marks := make(map[int]Status, len(dateIDs))
		var present, absent int
		for _, did := range dateIDs {
			st := recorded[did]
			marks[did] = st
			switch st {
			case Present:
				present++
			case Absent:
				absent++
			}
		}
		sheet.Marks[sid] = marks
		sheet.Stats[sid] = Percentage(present, absent)
	}
	return sheet
}

// Percentage is floor(present*100 / (present+absent)); 100 when nothing was marked.
func Percentage(present, absent int) int {
	total := present + absent
	if total == 0 {
		return 100
	}
	return present * 100 / total
}

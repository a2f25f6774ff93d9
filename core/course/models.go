package course

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/markaz/core"
)

type (
	Course struct {
		ID         int     `json:"id"`
		OwnerID    int     `json:"user_id"`
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		IsArchived bool    `json:"is_archived"`
	}

	Student struct {
		ID        int         `json:"id"`
		CourseID  int         `json:"course_id"`
		Name      string      `json:"name"`
		Phone     null.String `json:"phone"`
		TotalPaid float64     `json:"total_paid"` // sum of payments, computed on read
	}

	// ClassDate is one session of a Course. Ascending ids follow the calendar.
	ClassDate struct {
		ID       int    `json:"id"`
		CourseID int    `json:"course_id"`
		Label    string `json:"date_str"` // 02-Jan
	}
)

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name  string  `json:"name" form:"name" validate:"required,notblank,max=128"`
	Price float64 `json:"price" form:"price" validate:"gte=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateCourse contains the editable fields of a Course.
type UpdateCourse struct {
	ID    int     `json:"id" form:"id" validate:"required"`
	Name  string  `json:"name" form:"name" validate:"required,notblank,max=128"`
	Price float64 `json:"price" form:"price" validate:"gte=0"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}

// NewStudent contains information needed to enroll a Student in a Course.
type NewStudent struct {
	CourseID int    `json:"course_id" form:"course_id" validate:"required"`
	Name     string `json:"name" form:"name" validate:"required,notblank,max=128"`
	Phone    string `json:"phone" form:"phone" validate:"max=32"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Phone = core.CleanString(ns.Phone)
	return validate.Struct(ns)
}

// DateRange asks for one ClassDate per class day between Start and End (ISO dates, inclusive).
type DateRange struct {
	CourseID int    `json:"course_id" form:"course_id" validate:"required"`
	Start    string `json:"start_date" form:"start_date" validate:"required,datetime=2006-01-02"`
	End      string `json:"end_date" form:"end_date" validate:"required,datetime=2006-01-02"`
}

func (dr *DateRange) Validate(validate *validator.Validate) error {
	dr.Start = core.CleanString(dr.Start)
	dr.End = core.CleanString(dr.End)
	return validate.Struct(dr)
}

// IDRequest is the payload of the endpoints acting on a single object.
type IDRequest struct {
	ID int `json:"id" form:"id" validate:"required"`
}

func (r *IDRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

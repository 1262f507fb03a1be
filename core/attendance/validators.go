package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollcall/core"
)

var (
	studentRefTag  = "student_ref"
	studentRefText = "one of student_id or register_number is required"
)

// InitValidators registers the attendance validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(markStructValidation, MarkRequest{})
	core.RegisterCustomTranslation(validate, translator, studentRefTag, studentRefText)
}

func markStructValidation(sl validator.StructLevel) {
	mr := sl.Current().Interface().(MarkRequest)
	if mr.StudentID == "" && mr.RegisterNumber == "" {
		sl.ReportError(mr.StudentID, "student_id", "StudentID", studentRefTag, "")
		sl.ReportError(mr.RegisterNumber, "register_number", "RegisterNumber", studentRefTag, "")
	}
}

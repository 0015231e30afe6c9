package application

import (
	"errors"
	"math"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
)

// storeErr maps repository failures onto error kinds.
func storeErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(notFoundMsg)
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Wrap(apperror.KindInternal, "storage failure", err)
}

// nonNegative is false for NaN and +Inf as well as for negatives.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkStudentNumbers rejects scores that cannot be stored or rendered.
func checkStudentNumbers(p *entity.StudentProfile) error {
	if p == nil {
		return nil
	}
	fields := map[string]string{}
	if !finite(p.CGPA) {
		fields["cgpa"] = "must be a finite number"
	}
	if !finite(p.Class12Marks) {
		fields["class12Marks"] = "must be a finite number"
	}
	if len(fields) > 0 {
		return apperror.Validation("Validation failed", fields)
	}
	return nil
}

package reserve_slot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// validateJob валидирует данные заявки
func validateJob(job *JobInput) error {
	if strings.TrimSpace(job.CustomerID) == "" {
		return fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}

	if strings.TrimSpace(job.DeviceType) == "" {
		return fmt.Errorf("%w: deviceType is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(job.DeviceType) > domain.MaxDeviceFieldLength {
		return fmt.Errorf("%w: deviceType is longer than %d characters", ErrInvalidInput, domain.MaxDeviceFieldLength)
	}

	if strings.TrimSpace(job.IssueDescription) == "" {
		return fmt.Errorf("%w: issueDescription is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(job.IssueDescription) > domain.MaxIssueDescriptionLength {
		return fmt.Errorf("%w: issueDescription is longer than %d characters", ErrInvalidInput, domain.MaxIssueDescriptionLength)
	}

	optional := []struct {
		name  string
		value *string
		max   int
	}{
		{"deviceBrand", job.DeviceBrand, domain.MaxDeviceFieldLength},
		{"deviceModel", job.DeviceModel, domain.MaxDeviceFieldLength},
		{"contactPhone", job.ContactPhone, domain.MaxContactPhoneLength},
		{"notes", job.Notes, domain.MaxNotesLength},
	}
	for _, f := range optional {
		if f.value != nil && utf8.RuneCountInString(*f.value) > f.max {
			return fmt.Errorf("%w: %s is longer than %d characters", ErrInvalidInput, f.name, f.max)
		}
	}

	return nil
}

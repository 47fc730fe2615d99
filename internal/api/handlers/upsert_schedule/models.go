package upsert_schedule

import (
	"github.com/m04kA/SMC-RepairSlotService/internal/service/schedule/models"
)

// UpsertScheduleRequest HTTP request model; ключ берется из пути
type UpsertScheduleRequest struct {
	OpenTime        string `json:"openTime"`
	CloseTime       string `json:"closeTime"`
	IntervalMinutes int    `json:"intervalMinutes"`
	Capacity        int    `json:"capacity"`
	IsClosed        bool   `json:"isClosed"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpsertScheduleRequest) ToServiceRequest(key string, privileged bool) *models.UpsertScheduleRequest {
	return &models.UpsertScheduleRequest{
		Key:             key,
		OpenTime:        r.OpenTime,
		CloseTime:       r.CloseTime,
		IntervalMinutes: r.IntervalMinutes,
		Capacity:        r.Capacity,
		IsClosed:        r.IsClosed,
		Privileged:      privileged,
	}
}

package models

import (
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

// Request модели

// UpsertScheduleRequest запрос на создание или замену расписания
type UpsertScheduleRequest struct {
	Key             string `json:"key"`             // default | weekday:N | date:YYYY-MM-DD
	OpenTime        string `json:"openTime"`        // "10:00"
	CloseTime       string `json:"closeTime"`       // "19:00"
	IntervalMinutes int    `json:"intervalMinutes"` // шаг слотов
	Capacity        int    `json:"capacity"`        // мест в слоте по умолчанию
	IsClosed        bool   `json:"isClosed"`        // выходной
	Privileged      bool   `json:"-"`
}

// Response модели

// ScheduleResponse ответ с данными расписания
type ScheduleResponse struct {
	Key             string    `json:"key"`
	Level           string    `json:"level"`
	OpenTime        string    `json:"openTime"`
	CloseTime       string    `json:"closeTime"`
	IntervalMinutes int       `json:"intervalMinutes"`
	Capacity        int       `json:"capacity"`
	IsClosed        bool      `json:"isClosed"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}

// ScheduleListResponse сохраненные расписания и встроенное расписание по умолчанию
type ScheduleListResponse struct {
	Defaults  ScheduleResponse   `json:"defaults"`
	Schedules []ScheduleResponse `json:"schedules"`
}

// Методы конвертации

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.Schedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	return &ScheduleResponse{
		Key:             s.Key,
		Level:           s.Level(),
		OpenTime:        s.OpenTime.String(),
		CloseTime:       s.CloseTime.String(),
		IntervalMinutes: s.IntervalMinutes,
		Capacity:        s.Capacity,
		IsClosed:        s.IsClosed,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainScheduleList конвертирует список domain моделей в DTO
func FromDomainScheduleList(defaults *domain.Schedule, schedules []*domain.Schedule) *ScheduleListResponse {
	resp := &ScheduleListResponse{
		Schedules: make([]ScheduleResponse, 0, len(schedules)),
	}
	if d := FromDomainSchedule(defaults); d != nil {
		resp.Defaults = *d
	}

	for _, s := range schedules {
		if sr := FromDomainSchedule(s); sr != nil {
			resp.Schedules = append(resp.Schedules, *sr)
		}
	}

	return resp
}

// ToDomainSchedule конвертирует запрос в domain модель (без валидации)
func (r *UpsertScheduleRequest) ToDomainSchedule() *domain.Schedule {
	return &domain.Schedule{
		Key:             r.Key,
		OpenTime:        types.TimeString(r.OpenTime),
		CloseTime:       types.TimeString(r.CloseTime),
		IntervalMinutes: r.IntervalMinutes,
		Capacity:        r.Capacity,
		IsClosed:        r.IsClosed,
	}
}

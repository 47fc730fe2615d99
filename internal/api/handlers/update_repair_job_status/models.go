package update_repair_job_status

import "github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(privileged bool) *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		Status:     r.Status,
		Privileged: privileged,
	}
}

package repairjob

import "errors"

var (
	// ErrRepairJobNotFound возвращается, когда заявка не найдена
	ErrRepairJobNotFound = errors.New("repairjob.repository: repair job not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("repairjob.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("repairjob.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("repairjob.repository: failed to scan row")

	// ErrInvalidStatus возвращается при попытке установить недопустимый статус
	ErrInvalidStatus = errors.New("repairjob.repository: invalid repair job status")
)

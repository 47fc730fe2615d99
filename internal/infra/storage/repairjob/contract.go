package repairjob

import "github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

package txmanager

import "errors"

var (
	// ErrTransient возвращается, когда транзакция не прошла из-за конфликта или недоступности хранилища и попытки исчерпаны.
	// Вызывающая сторона может повторить операцию позже.
	ErrTransient = errors.New("txmanager: transient failure, retries exhausted")

	// ErrTransaction возвращается при ошибках begin/commit
	ErrTransaction = errors.New("txmanager: transaction error")

	// ErrUnavailable помечает ошибку недоступного хранилища (нет соединения, сервер не выбран).
	// Адаптеры, чьи драйверы не дают net.OpError, оборачивают ею свои ошибки.
	ErrUnavailable = errors.New("txmanager: store unavailable")
)

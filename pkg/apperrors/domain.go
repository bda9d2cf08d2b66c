package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные
для общих ошибок бизнес-логики и домена.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404).
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// --- Auth ---

// ErrInsufficientPermissions - актор не владеет ресурсом или не имеет нужной роли.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrInvalidUserRole - операция не предусмотрена для роли пользователя.
var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

// ErrInvalidToken - неверный или просроченный токен.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// --- Collaboration ---

// ErrCollaborationEnded - end_date коллаборации в прошлом, переходы запрещены.
var ErrCollaborationEnded = New(
	CodeInvalidStatus,
	"collaboration",
	"Collaboration has ended",
	http.StatusConflict,
)

// ErrCollaborationClosed - коллаборация уже закрыта.
var ErrCollaborationClosed = New(
	CodeInvalidStatus,
	"collaboration",
	"Collaboration is already closed",
	http.StatusConflict,
)

// ErrNoCompletedRequests - закрытие требует хотя бы одного завершенного запроса.
var ErrNoCompletedRequests = New(
	CodeInvalidStatus,
	"collaboration",
	"Collaboration has no completed requests",
	http.StatusConflict,
)

// ErrEndDateNotFuture - end_date должен быть строго в будущем.
var ErrEndDateNotFuture = New(
	CodeValidationFailed,
	"validation",
	"The end date must be a future date",
	http.StatusBadRequest,
)

// --- Collaboration requests ---

// ErrInvalidRequestStatus - операция невозможна в текущем статусе запроса.
var ErrInvalidRequestStatus = New(
	CodeInvalidStatus,
	"collaboration_request",
	"Operation not allowed for the current request status",
	http.StatusConflict,
)

// ErrRequestAlreadyExists - пара (collaboration, influencer) уже существует.
var ErrRequestAlreadyExists = New(
	CodeAlreadyExists,
	"collaboration_request",
	"Collaboration request already exists for this influencer",
	http.StatusConflict,
)

// ErrAcceptedInfluencerExists - у коллаборации уже есть принятый инфлюенсер
// (действует только при включенной policy.single_accepted_influencer).
var ErrAcceptedInfluencerExists = New(
	CodeConflict,
	"collaboration_request",
	"This collaboration already has an accepted influencer",
	http.StatusConflict,
)

// --- Chat ---

// ErrChatAccessDenied - пользователь не является участником чата.
var ErrChatAccessDenied = New(
	CodeForbidden,
	"chat",
	"Access to chat denied",
	http.StatusForbidden,
)

// ErrChatNotFound - чат не найден.
var ErrChatNotFound = New(
	CodeNotFound,
	"chat",
	"Chat not found",
	http.StatusNotFound,
)

// --- Profiles ---

// ErrBrandNotFound - у пользователя нет профиля бренда.
var ErrBrandNotFound = New(
	CodeNotFound,
	"profile",
	"Brand profile not found",
	http.StatusNotFound,
)

// ErrInfluencerNotFound - у пользователя нет профиля инфлюенсера.
var ErrInfluencerNotFound = New(
	CodeNotFound,
	"profile",
	"Influencer profile not found",
	http.StatusNotFound,
)

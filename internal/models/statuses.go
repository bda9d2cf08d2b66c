package models

type UserRole string

const (
	UserRoleBrand      UserRole = "brand"
	UserRoleInfluencer UserRole = "influencer"
)

// CollaborationStatus - статус коллаборации в целом (не запроса).
// Меняется после того, как инфлюенсер зафиксирован.
type CollaborationStatus string

const (
	CollaborationStatusPending   CollaborationStatus = "pending"
	CollaborationStatusAccepted  CollaborationStatus = "accepted"
	CollaborationStatusCompleted CollaborationStatus = "completed"
	CollaborationStatusClosed    CollaborationStatus = "closed"
)

// RequestStatus - статус запроса коллаборации (join-записи пары
// collaboration/influencer). Числовые коды соответствуют колонке status.
type RequestStatus int

const (
	RequestStatusPending    RequestStatus = 1
	RequestStatusInterested RequestStatus = 2
	RequestStatusInvited    RequestStatus = 3
	RequestStatusAccepted   RequestStatus = 4
	RequestStatusCompleted  RequestStatus = 5
	RequestStatusRejected   RequestStatus = 6
)

func (s RequestStatus) String() string {
	switch s {
	case RequestStatusPending:
		return "pending"
	case RequestStatusInterested:
		return "interested"
	case RequestStatusInvited:
		return "invited"
	case RequestStatusAccepted:
		return "accepted"
	case RequestStatusCompleted:
		return "completed"
	case RequestStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal - completed и rejected конечны: дальнейшие переходы запрещены.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusRejected
}

// Guard-наборы переходов. Переход применяется условным UPDATE
// (WHERE status IN guard), поэтому проигравший гонку получает конфликт.
var (
	// Инфлюенсер отмечает интерес или отклоняет
	InterestGuard = []RequestStatus{RequestStatusPending, RequestStatusInvited}
	DeclineGuard  = []RequestStatus{RequestStatusPending, RequestStatusInvited}

	// Бренд принимает или отклоняет
	DecisionGuard = []RequestStatus{RequestStatusInterested, RequestStatusInvited}

	// Инфлюенсер принимает приглашение
	AcceptInvitationGuard = []RequestStatus{RequestStatusInvited}

	// Бренд отмечает завершение
	CompleteGuard = []RequestStatus{RequestStatusAccepted}
)

// InGuard проверяет, входит ли статус в guard-набор.
func (s RequestStatus) InGuard(guard []RequestStatus) bool {
	for _, g := range guard {
		if s == g {
			return true
		}
	}
	return false
}

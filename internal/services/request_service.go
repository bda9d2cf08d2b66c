package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

// RequestService - машина состояний запроса коллаборации.
//
// Каждый переход выполняется условным UPDATE по guard-набору внутри
// транзакции вместе с записью уведомления и (для принятия) созданием
// чата. Push и email уходят после коммита.
type RequestService interface {
	// Brand side
	Invite(db *gorm.DB, brandUserID, collaborationID, influencerID string) (*dto.RequestResponse, error)
	Accept(db *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, error)
	Reject(db *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, error)
	Complete(db *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, error)
	GetCollaborationRequests(db *gorm.DB, brandUserID, collaborationID string) (*dto.RequestListResponse, error)
	GetInterestedInfluencers(db *gorm.DB, brandUserID, collaborationID string) (*dto.InterestedInfluencersResponse, error)
	GetAllInterestedInfluencers(db *gorm.DB, brandUserID string) (*dto.AllInterestedResponse, error)

	// Influencer side
	MarkInterested(db *gorm.DB, influencerUserID, collaborationID string) (*dto.RequestResponse, error)
	AcceptInvitation(db *gorm.DB, influencerUserID, requestID string) (*dto.RequestResponse, error)
	Decline(db *gorm.DB, influencerUserID, requestID string) (*dto.RequestResponse, error)
	GetInfluencerRequests(db *gorm.DB, influencerUserID string) (*dto.InfluencerRequestListResponse, error)
}

type requestService struct {
	requestRepo       repositories.RequestRepository
	collaborationRepo repositories.CollaborationRepository
	profileRepo       repositories.ProfileRepository
	userRepo          repositories.UserRepository
	notifications     NotificationService
	chats             ChatService

	// Не более одного принятого инфлюенсера на коллаборацию
	singleAccepted bool
}

func NewRequestService(
	requestRepo repositories.RequestRepository,
	collaborationRepo repositories.CollaborationRepository,
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	chats ChatService,
	singleAccepted bool,
) RequestService {
	return &requestService{
		requestRepo:       requestRepo,
		collaborationRepo: collaborationRepo,
		profileRepo:       profileRepo,
		userRepo:          userRepo,
		notifications:     notifications,
		chats:             chats,
		singleAccepted:    singleAccepted,
	}
}

// requestContext - все стороны запроса, загруженные в рамках транзакции.
type requestContext struct {
	request       *models.CollaborationRequest
	collaboration *models.Collaboration
	brand         *models.Brand
	influencer    *models.Influencer
}

// postCommitFunc - отправки, выполняемые после коммита перехода.
type postCommitFunc func(db *gorm.DB)

// runTx оборачивает переход транзакцией: тело выполняется на tx,
// возвращенные отправки - после коммита на исходном пуле.
func (s *requestService) runTx(db *gorm.DB, op func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error)) (*dto.RequestResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	resp, notify, err := op(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	if notify != nil {
		notify(db)
	}
	return resp, nil
}

// ---------------- Brand side ----------------

// Invite создает запись пары в статусе invited или переводит в него
// существующую pending-запись.
func (s *requestService) Invite(db *gorm.DB, brandUserID, collaborationID, influencerID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.inviteTx(tx, brandUserID, collaborationID, influencerID)
	})
}

func (s *requestService) inviteTx(tx *gorm.DB, brandUserID, collaborationID, influencerID string) (*dto.RequestResponse, postCommitFunc, error) {
	brand, err := s.profileRepo.FindBrandByUserID(tx, brandUserID)
	if err != nil {
		return nil, nil, apperrors.ErrBrandNotFound
	}
	collaboration, err := s.loadOpenCollaboration(tx, collaborationID)
	if err != nil {
		return nil, nil, err
	}
	if collaboration.BrandID != brand.ID {
		return nil, nil, apperrors.ErrInsufficientPermissions
	}
	influencer, err := s.profileRepo.FindInfluencerByID(tx, influencerID)
	if err != nil {
		return nil, nil, apperrors.ErrInfluencerNotFound
	}

	request, err := s.requestRepo.FindByPair(tx, collaborationID, influencerID)
	switch {
	case err == nil:
		// Pending-запись матчинга переводится в invited; любой другой
		// статус означает, что инфлюенсер уже отреагировал
		if request.Status != models.RequestStatusPending {
			return nil, nil, apperrors.ErrRequestAlreadyExists
		}
		if err := s.requestRepo.UpdateStatusGuarded(tx, request.ID,
			[]models.RequestStatus{models.RequestStatusPending}, models.RequestStatusInvited); err != nil {
			return nil, nil, s.mapGuardError(err)
		}
		request.Status = models.RequestStatusInvited
	case errors.Is(err, repositories.ErrRequestNotFound):
		request = &models.CollaborationRequest{
			CollaborationID: collaborationID,
			InfluencerID:    influencerID,
			Status:          models.RequestStatusInvited,
		}
		if err := s.requestRepo.CreateIfAbsent(tx, request); err != nil {
			if errors.Is(err, repositories.ErrRequestAlreadyExists) {
				return nil, nil, apperrors.ErrRequestAlreadyExists
			}
			return nil, nil, apperrors.InternalError(err)
		}
	default:
		return nil, nil, apperrors.InternalError(err)
	}

	if err := s.notifications.RecordInvite(tx, influencer.UserID, collaboration, request.ID); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	notify := func(db *gorm.DB) {
		s.notifications.PushToUser(db, influencer.UserID,
			"Приглашение в коллаборацию",
			fmt.Sprintf("Бренд приглашает вас в коллаборацию «%s»", collaboration.Name),
			requestPushData(collaboration.ID, request.ID),
		)
	}
	return buildRequestResponse(request), notify, nil
}

// Accept - решение бренда по заявке (interested или invited).
func (s *requestService) Accept(db *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.acceptTx(tx, brandUserID, requestID)
	})
}

func (s *requestService) acceptTx(tx *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, postCommitFunc, error) {
	rc, err := s.loadBrandRequestContext(tx, brandUserID, requestID)
	if err != nil {
		return nil, nil, err
	}

	if s.singleAccepted {
		taken, err := s.requestRepo.ExistsWithStatus(tx, rc.collaboration.ID, models.RequestStatusAccepted)
		if err != nil {
			return nil, nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, nil, apperrors.ErrAcceptedInfluencerExists
		}
	}

	if err := s.requestRepo.UpdateStatusGuarded(tx, requestID, models.DecisionGuard, models.RequestStatusAccepted); err != nil {
		return nil, nil, s.mapGuardError(err)
	}
	rc.request.Status = models.RequestStatusAccepted

	if err := s.finishAcceptance(tx, rc, brandUserID); err != nil {
		return nil, nil, err
	}
	return buildRequestResponse(rc.request), func(db *gorm.DB) { s.notifyAccepted(db, rc) }, nil
}

// Reject - отказ бренда по заявке.
func (s *requestService) Reject(db *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.rejectTx(tx, brandUserID, requestID)
	})
}

func (s *requestService) rejectTx(tx *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, postCommitFunc, error) {
	rc, err := s.loadBrandRequestContext(tx, brandUserID, requestID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requestRepo.UpdateStatusGuarded(tx, requestID, models.DecisionGuard, models.RequestStatusRejected); err != nil {
		return nil, nil, s.mapGuardError(err)
	}
	rc.request.Status = models.RequestStatusRejected

	if err := s.notifications.RecordTransition(tx, rc.influencer.UserID, rc.collaboration, rc.request); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	notify := func(db *gorm.DB) {
		s.notifications.PushToUser(db, rc.influencer.UserID,
			"Заявка отклонена",
			fmt.Sprintf("Бренд отклонил вашу заявку по коллаборации «%s»", rc.collaboration.Name),
			requestPushData(rc.collaboration.ID, rc.request.ID),
		)
	}
	return buildRequestResponse(rc.request), notify, nil
}

// Complete - бренд отмечает завершение работы инфлюенсера.
func (s *requestService) Complete(db *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.completeTx(tx, brandUserID, requestID)
	})
}

func (s *requestService) completeTx(tx *gorm.DB, brandUserID, requestID string) (*dto.RequestResponse, postCommitFunc, error) {
	rc, err := s.loadBrandRequestContext(tx, brandUserID, requestID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requestRepo.UpdateStatusGuarded(tx, requestID, models.CompleteGuard, models.RequestStatusCompleted); err != nil {
		return nil, nil, s.mapGuardError(err)
	}
	rc.request.Status = models.RequestStatusCompleted

	if err := s.collaborationRepo.UpdateStatus(tx, rc.collaboration.ID, models.CollaborationStatusCompleted); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}
	if err := s.notifications.RecordTransition(tx, rc.influencer.UserID, rc.collaboration, rc.request); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	notify := func(db *gorm.DB) {
		s.notifications.PushToUser(db, rc.influencer.UserID,
			"Коллаборация завершена",
			fmt.Sprintf("Работа по коллаборации «%s» отмечена завершенной", rc.collaboration.Name),
			requestPushData(rc.collaboration.ID, rc.request.ID),
		)
	}
	return buildRequestResponse(rc.request), notify, nil
}

func (s *requestService) GetCollaborationRequests(db *gorm.DB, brandUserID, collaborationID string) (*dto.RequestListResponse, error) {
	if _, err := s.ownedCollaboration(db, brandUserID, collaborationID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.FindByCollaborationID(db, collaborationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, buildRequestResponse(&requests[i]))
	}
	return &dto.RequestListResponse{Requests: items, Total: len(items)}, nil
}

func (s *requestService) GetInterestedInfluencers(db *gorm.DB, brandUserID, collaborationID string) (*dto.InterestedInfluencersResponse, error) {
	if _, err := s.ownedCollaboration(db, brandUserID, collaborationID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.FindByCollaborationIDAndStatus(db, collaborationID, models.RequestStatusInterested)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.InfluencerSummary, 0, len(requests))
	for i := range requests {
		influencer, err := s.profileRepo.FindInfluencerByID(db, requests[i].InfluencerID)
		if err != nil {
			continue
		}
		items = append(items, &dto.InfluencerSummary{
			ID:           influencer.ID,
			Name:         influencer.Name,
			Categories:   influencer.GetCategories(),
			CollabValue:  influencer.CollabValue,
			ProfilePhoto: influencer.ProfilePhoto,
			RequestID:    requests[i].ID,
			Status:       int(requests[i].Status),
		})
	}
	return &dto.InterestedInfluencersResponse{Influencers: items, Total: len(items)}, nil
}

// GetAllInterestedInfluencers - заинтересованные инфлюенсеры по всем
// коллаборациям бренда, сгруппированные по коллаборации.
func (s *requestService) GetAllInterestedInfluencers(db *gorm.DB, brandUserID string) (*dto.AllInterestedResponse, error) {
	brand, err := s.profileRepo.FindBrandByUserID(db, brandUserID)
	if err != nil {
		return nil, apperrors.ErrBrandNotFound
	}
	collaborations, err := s.collaborationRepo.FindByBrandID(db, brand.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	groups := make([]*dto.CollaborationInterestedGroup, 0, len(collaborations))
	total := 0
	for i := range collaborations {
		requests, err := s.requestRepo.FindByCollaborationIDAndStatus(db, collaborations[i].ID, models.RequestStatusInterested)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if len(requests) == 0 {
			continue
		}
		group := &dto.CollaborationInterestedGroup{
			CollaborationID:   collaborations[i].ID,
			CollaborationName: collaborations[i].Name,
		}
		for j := range requests {
			influencer, err := s.profileRepo.FindInfluencerByID(db, requests[j].InfluencerID)
			if err != nil {
				continue
			}
			group.Influencers = append(group.Influencers, &dto.InfluencerSummary{
				ID:           influencer.ID,
				Name:         influencer.Name,
				Categories:   influencer.GetCategories(),
				CollabValue:  influencer.CollabValue,
				ProfilePhoto: influencer.ProfilePhoto,
				RequestID:    requests[j].ID,
				Status:       int(requests[j].Status),
			})
		}
		total += len(group.Influencers)
		groups = append(groups, group)
	}
	return &dto.AllInterestedResponse{Collaborations: groups, Total: total}, nil
}

// ---------------- Influencer side ----------------

// MarkInterested - инфлюенсер выражает интерес к коллаборации.
// Pending-запись матчинга переводится в interested; если записи нет
// (коллаборация найдена через подборку), она создается сразу в interested.
func (s *requestService) MarkInterested(db *gorm.DB, influencerUserID, collaborationID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.markInterestedTx(tx, influencerUserID, collaborationID)
	})
}

func (s *requestService) markInterestedTx(tx *gorm.DB, influencerUserID, collaborationID string) (*dto.RequestResponse, postCommitFunc, error) {
	influencer, err := s.profileRepo.FindInfluencerByUserID(tx, influencerUserID)
	if err != nil {
		return nil, nil, apperrors.ErrInfluencerNotFound
	}
	collaboration, err := s.loadOpenCollaboration(tx, collaborationID)
	if err != nil {
		return nil, nil, err
	}
	brand, err := s.profileRepo.FindBrandByID(tx, collaboration.BrandID)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	request, err := s.requestRepo.FindByPair(tx, collaborationID, influencer.ID)
	switch {
	case err == nil:
		if err := s.requestRepo.UpdateStatusGuarded(tx, request.ID, models.InterestGuard, models.RequestStatusInterested); err != nil {
			return nil, nil, s.mapGuardError(err)
		}
		request.Status = models.RequestStatusInterested
	case errors.Is(err, repositories.ErrRequestNotFound):
		request = &models.CollaborationRequest{
			CollaborationID: collaborationID,
			InfluencerID:    influencer.ID,
			Status:          models.RequestStatusInterested,
		}
		if err := s.requestRepo.CreateIfAbsent(tx, request); err != nil {
			if errors.Is(err, repositories.ErrRequestAlreadyExists) {
				return nil, nil, apperrors.ErrRequestAlreadyExists
			}
			return nil, nil, apperrors.InternalError(err)
		}
	default:
		return nil, nil, apperrors.InternalError(err)
	}

	if err := s.notifications.RecordTransition(tx, brand.UserID, collaboration, request); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	notify := func(db *gorm.DB) {
		s.notifications.PushToUser(db, brand.UserID,
			"Новая заявка",
			fmt.Sprintf("Инфлюенсер %s заинтересован в коллаборации «%s»", influencer.Name, collaboration.Name),
			requestPushData(collaboration.ID, request.ID),
		)
	}
	return buildRequestResponse(request), notify, nil
}

// AcceptInvitation - инфлюенсер принимает приглашение бренда.
func (s *requestService) AcceptInvitation(db *gorm.DB, influencerUserID, requestID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.acceptInvitationTx(tx, influencerUserID, requestID)
	})
}

func (s *requestService) acceptInvitationTx(tx *gorm.DB, influencerUserID, requestID string) (*dto.RequestResponse, postCommitFunc, error) {
	rc, err := s.loadInfluencerRequestContext(tx, influencerUserID, requestID)
	if err != nil {
		return nil, nil, err
	}

	if s.singleAccepted {
		taken, err := s.requestRepo.ExistsWithStatus(tx, rc.collaboration.ID, models.RequestStatusAccepted)
		if err != nil {
			return nil, nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, nil, apperrors.ErrAcceptedInfluencerExists
		}
	}

	if err := s.requestRepo.UpdateStatusGuarded(tx, requestID, models.AcceptInvitationGuard, models.RequestStatusAccepted); err != nil {
		return nil, nil, s.mapGuardError(err)
	}
	rc.request.Status = models.RequestStatusAccepted

	if err := s.finishAcceptance(tx, rc, rc.influencer.UserID); err != nil {
		return nil, nil, err
	}

	notify := func(db *gorm.DB) {
		s.notifications.PushToUser(db, rc.brand.UserID,
			"Приглашение принято",
			fmt.Sprintf("Инфлюенсер %s принял приглашение в коллаборацию «%s»", rc.influencer.Name, rc.collaboration.Name),
			requestPushData(rc.collaboration.ID, rc.request.ID),
		)
	}
	return buildRequestResponse(rc.request), notify, nil
}

// Decline - инфлюенсер отклоняет pending или invited запись.
func (s *requestService) Decline(db *gorm.DB, influencerUserID, requestID string) (*dto.RequestResponse, error) {
	return s.runTx(db, func(tx *gorm.DB) (*dto.RequestResponse, postCommitFunc, error) {
		return s.declineTx(tx, influencerUserID, requestID)
	})
}

func (s *requestService) declineTx(tx *gorm.DB, influencerUserID, requestID string) (*dto.RequestResponse, postCommitFunc, error) {
	rc, err := s.loadInfluencerRequestContext(tx, influencerUserID, requestID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requestRepo.UpdateStatusGuarded(tx, requestID, models.DeclineGuard, models.RequestStatusRejected); err != nil {
		return nil, nil, s.mapGuardError(err)
	}
	rc.request.Status = models.RequestStatusRejected

	if err := s.notifications.RecordTransition(tx, rc.brand.UserID, rc.collaboration, rc.request); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	notify := func(db *gorm.DB) {
		s.notifications.PushToUser(db, rc.brand.UserID,
			"Заявка отклонена",
			fmt.Sprintf("Инфлюенсер %s отклонил предложение по коллаборации «%s»", rc.influencer.Name, rc.collaboration.Name),
			requestPushData(rc.collaboration.ID, rc.request.ID),
		)
	}
	return buildRequestResponse(rc.request), notify, nil
}

func (s *requestService) GetInfluencerRequests(db *gorm.DB, influencerUserID string) (*dto.InfluencerRequestListResponse, error) {
	influencer, err := s.profileRepo.FindInfluencerByUserID(db, influencerUserID)
	if err != nil {
		return nil, apperrors.ErrInfluencerNotFound
	}
	requests, err := s.requestRepo.FindByInfluencerID(db, influencer.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.InfluencerRequestItem, 0, len(requests))
	for i := range requests {
		item := &dto.InfluencerRequestItem{RequestResponse: *buildRequestResponse(&requests[i])}
		if collaboration, err := s.collaborationRepo.FindByID(db, requests[i].CollaborationID); err == nil {
			item.Collaboration = buildCollaborationResponse(collaboration)
		}
		items = append(items, item)
	}
	return &dto.InfluencerRequestListResponse{Requests: items, Total: len(items)}, nil
}

// ---------------- Helpers ----------------

// loadOpenCollaboration возвращает коллаборацию, по которой переходы
// еще разрешены.
func (s *requestService) loadOpenCollaboration(tx *gorm.DB, collaborationID string) (*models.Collaboration, error) {
	collaboration, err := s.collaborationRepo.FindByID(tx, collaborationID)
	if err != nil {
		if errors.Is(err, repositories.ErrCollaborationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if collaboration.Status == models.CollaborationStatusClosed {
		return nil, apperrors.ErrCollaborationClosed
	}
	if collaboration.HasEnded(time.Now()) {
		return nil, apperrors.ErrCollaborationEnded
	}
	return collaboration, nil
}

func (s *requestService) loadBrandRequestContext(tx *gorm.DB, brandUserID, requestID string) (*requestContext, error) {
	brand, err := s.profileRepo.FindBrandByUserID(tx, brandUserID)
	if err != nil {
		return nil, apperrors.ErrBrandNotFound
	}
	rc, err := s.loadRequestContext(tx, requestID)
	if err != nil {
		return nil, err
	}
	if rc.collaboration.BrandID != brand.ID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	rc.brand = brand
	return rc, nil
}

func (s *requestService) loadInfluencerRequestContext(tx *gorm.DB, influencerUserID, requestID string) (*requestContext, error) {
	influencer, err := s.profileRepo.FindInfluencerByUserID(tx, influencerUserID)
	if err != nil {
		return nil, apperrors.ErrInfluencerNotFound
	}
	rc, err := s.loadRequestContext(tx, requestID)
	if err != nil {
		return nil, err
	}
	if rc.request.InfluencerID != influencer.ID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	rc.influencer = influencer
	return rc, nil
}

func (s *requestService) loadRequestContext(tx *gorm.DB, requestID string) (*requestContext, error) {
	request, err := s.requestRepo.FindByID(tx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	collaboration, err := s.collaborationRepo.FindByID(tx, request.CollaborationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if collaboration.Status == models.CollaborationStatusClosed {
		return nil, apperrors.ErrCollaborationClosed
	}
	if collaboration.HasEnded(time.Now()) {
		return nil, apperrors.ErrCollaborationEnded
	}

	brand, err := s.profileRepo.FindBrandByID(tx, collaboration.BrandID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	influencer, err := s.profileRepo.FindInfluencerByID(tx, request.InfluencerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &requestContext{
		request:       request,
		collaboration: collaboration,
		brand:         brand,
		influencer:    influencer,
	}, nil
}

// finishAcceptance - общий хвост принятия: статус коллаборации, чат,
// уведомление инфлюенсеру. Выполняется в той же транзакции, что и переход.
func (s *requestService) finishAcceptance(tx *gorm.DB, rc *requestContext, actorUserID string) error {
	if err := s.collaborationRepo.UpdateStatus(tx, rc.collaboration.ID, models.CollaborationStatusAccepted); err != nil {
		return apperrors.InternalError(err)
	}

	if rc.brand == nil || rc.influencer == nil {
		return apperrors.InternalError(errors.New("request parties not resolved"))
	}
	if _, err := s.chats.EnsureDirectChat(tx, actorUserID, rc.brand.UserID, rc.influencer.UserID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.notifications.RecordTransition(tx, rc.influencer.UserID, rc.collaboration, rc.request); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *requestService) notifyAccepted(db *gorm.DB, rc *requestContext) {
	s.notifications.PushToUser(db, rc.influencer.UserID,
		"Заявка принята",
		fmt.Sprintf("Бренд принял вашу заявку по коллаборации «%s»", rc.collaboration.Name),
		requestPushData(rc.collaboration.ID, rc.request.ID),
	)
	s.notifications.SendAcceptanceEmail(db, rc.influencer.UserID,
		rc.brand.Name, rc.influencer.Name, rc.collaboration.Name)
}

func (s *requestService) ownedCollaboration(db *gorm.DB, brandUserID, collaborationID string) (*models.Collaboration, error) {
	brand, err := s.profileRepo.FindBrandByUserID(db, brandUserID)
	if err != nil {
		return nil, apperrors.ErrBrandNotFound
	}
	collaboration, err := s.collaborationRepo.FindByID(db, collaborationID)
	if err != nil {
		if errors.Is(err, repositories.ErrCollaborationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if collaboration.BrandID != brand.ID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return collaboration, nil
}

// mapGuardError переводит нарушение guard-набора в доменную ошибку.
func (s *requestService) mapGuardError(err error) error {
	if errors.Is(err, repositories.ErrGuardViolated) {
		return apperrors.ErrInvalidRequestStatus
	}
	return apperrors.InternalError(err)
}

func requestPushData(collaborationID, requestID string) map[string]string {
	return map[string]string{
		"collaboration_id":         collaborationID,
		"collaboration_request_id": requestID,
	}
}

func buildRequestResponse(request *models.CollaborationRequest) *dto.RequestResponse {
	return &dto.RequestResponse{
		ID:              request.ID,
		CollaborationID: request.CollaborationID,
		InfluencerID:    request.InfluencerID,
		Status:          int(request.Status),
		StatusLabel:     request.Status.String(),
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
}

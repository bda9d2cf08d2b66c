package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabhub_backend/internal/models"
	"collabhub_backend/pkg/apperrors"
)

type requestFixture struct {
	userRepo          *fakeUserRepo
	profileRepo       *fakeProfileRepo
	collaborationRepo *fakeCollaborationRepo
	requestRepo       *fakeRequestRepo
	notificationRepo  *fakeNotificationRepo
	chatRepo          *fakeChatRepo
	pushProvider      *capturePushProvider
	emailProvider     *captureEmailProvider
	svc               RequestService

	// Конкретный тип: переходы тестируются через tx-тела, без db.Begin()
	impl *requestService
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		userRepo:          newFakeUserRepo(),
		profileRepo:       newFakeProfileRepo(),
		collaborationRepo: newFakeCollaborationRepo(),
		requestRepo:       newFakeRequestRepo(),
		notificationRepo:  newFakeNotificationRepo(),
		chatRepo:          newFakeChatRepo(),
		pushProvider:      newCapturePushProvider(),
		emailProvider:     newCaptureEmailProvider(),
	}
	notifications := NewNotificationService(f.notificationRepo, f.userRepo, f.pushProvider, f.emailProvider)
	chats := NewChatService(f.chatRepo, f.userRepo)
	f.svc = NewRequestService(f.requestRepo, f.collaborationRepo, f.profileRepo, f.userRepo, notifications, chats, true)
	f.impl = f.svc.(*requestService)
	return f
}

// requestSeed - обе стороны запроса и открытая коллаборация между ними.
type requestSeed struct {
	brand         *models.Brand
	influencer    *models.Influencer
	collaboration *models.Collaboration
	request       *models.CollaborationRequest
}

// seedPair готовит бренд, инфлюенсера (оба с FCM-токенами) и запись
// пары в заданном статусе; нулевой статус означает "записи еще нет".
func (f *requestFixture) seedPair(status models.RequestStatus) *requestSeed {
	brandUser := &models.User{Email: "brand@glow.co", FCMToken: "brand-token"}
	brandUser.ID = "brand-user"
	_ = f.userRepo.Create(nil, brandUser)
	influencerUser := &models.User{Email: "aliya@mail.kz", FCMToken: "inf-token"}
	influencerUser.ID = "inf-user"
	_ = f.userRepo.Create(nil, influencerUser)

	brand := &models.Brand{UserID: "brand-user", Name: "GlowCo"}
	_ = f.profileRepo.CreateBrand(nil, brand)
	influencer := &models.Influencer{UserID: "inf-user", Name: "Aliya", CollabValue: 500}
	_ = f.profileRepo.CreateInfluencer(nil, influencer)
	collaboration := &models.Collaboration{BrandID: brand.ID, Name: "Summer Launch", Amount: 1000, Status: models.CollaborationStatusPending}
	_ = f.collaborationRepo.Create(nil, collaboration)

	seed := &requestSeed{brand: brand, influencer: influencer, collaboration: collaboration}
	if status != 0 {
		seed.request = &models.CollaborationRequest{
			CollaborationID: collaboration.ID,
			InfluencerID:    influencer.ID,
			Status:          status,
		}
		_ = f.requestRepo.CreateIfAbsent(nil, seed.request)
	}
	return seed
}

// expectPush ждет отправку и проверяет адресата с заголовком.
func (f *requestFixture) expectPush(t *testing.T, token, title string) {
	t.Helper()
	select {
	case msg := <-f.pushProvider.messages:
		assert.Equal(t, token, msg.Token)
		assert.Equal(t, title, msg.Title)
	case <-time.After(2 * time.Second):
		t.Fatalf("push %q не отправлен", title)
	}
}

func TestGetCollaborationRequests(t *testing.T) {
	f := newRequestFixture()

	brand := &models.Brand{UserID: "brand-user", Name: "GlowCo"}
	require.NoError(t, f.profileRepo.CreateBrand(nil, brand))
	collaboration := &models.Collaboration{BrandID: brand.ID, Name: "Collab", Amount: 1000}
	require.NoError(t, f.collaborationRepo.Create(nil, collaboration))

	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: collaboration.ID, InfluencerID: "inf-1", Status: models.RequestStatusPending,
	}))
	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: collaboration.ID, InfluencerID: "inf-2", Status: models.RequestStatusInterested,
	}))

	t.Run("owner", func(t *testing.T) {
		list, err := f.svc.GetCollaborationRequests(nil, "brand-user", collaboration.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Total)
		// Ответ несет числовой статус и его метку
		for _, item := range list.Requests {
			assert.NotEmpty(t, item.StatusLabel)
		}
	})

	t.Run("foreign brand", func(t *testing.T) {
		other := &models.Brand{UserID: "other-user", Name: "OtherCo"}
		require.NoError(t, f.profileRepo.CreateBrand(nil, other))

		_, err := f.svc.GetCollaborationRequests(nil, "other-user", collaboration.ID)
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	})

	t.Run("unknown collaboration", func(t *testing.T) {
		_, err := f.svc.GetCollaborationRequests(nil, "brand-user", "missing")
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

func TestGetInterestedInfluencers(t *testing.T) {
	f := newRequestFixture()

	brand := &models.Brand{UserID: "brand-user", Name: "GlowCo"}
	require.NoError(t, f.profileRepo.CreateBrand(nil, brand))
	collaboration := &models.Collaboration{BrandID: brand.ID, Name: "Collab", Amount: 1000}
	require.NoError(t, f.collaborationRepo.Create(nil, collaboration))

	interested := &models.Influencer{UserID: "inf-user-1", Name: "Aliya", CollabValue: 500}
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, interested))
	pending := &models.Influencer{UserID: "inf-user-2", Name: "Dana", CollabValue: 300}
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, pending))

	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: collaboration.ID, InfluencerID: interested.ID, Status: models.RequestStatusInterested,
	}))
	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: collaboration.ID, InfluencerID: pending.ID, Status: models.RequestStatusPending,
	}))

	// В выборке только interested-записи
	list, err := f.svc.GetInterestedInfluencers(nil, "brand-user", collaboration.ID)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Aliya", list.Influencers[0].Name)
	assert.Equal(t, int(models.RequestStatusInterested), list.Influencers[0].Status)
}

func TestGetAllInterestedInfluencers(t *testing.T) {
	f := newRequestFixture()

	brand := &models.Brand{UserID: "brand-user", Name: "GlowCo"}
	require.NoError(t, f.profileRepo.CreateBrand(nil, brand))

	withInterest := &models.Collaboration{BrandID: brand.ID, Name: "Summer", Amount: 1000}
	require.NoError(t, f.collaborationRepo.Create(nil, withInterest))
	without := &models.Collaboration{BrandID: brand.ID, Name: "Winter", Amount: 500}
	require.NoError(t, f.collaborationRepo.Create(nil, without))

	influencer := &models.Influencer{UserID: "inf-user", Name: "Aliya", CollabValue: 500}
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, influencer))
	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: withInterest.ID, InfluencerID: influencer.ID, Status: models.RequestStatusInterested,
	}))

	resp, err := f.svc.GetAllInterestedInfluencers(nil, "brand-user")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	// Коллаборации без заинтересованных в сводку не попадают
	require.Len(t, resp.Collaborations, 1)
	assert.Equal(t, "Summer", resp.Collaborations[0].CollaborationName)
	require.Len(t, resp.Collaborations[0].Influencers, 1)
	assert.Equal(t, "Aliya", resp.Collaborations[0].Influencers[0].Name)
}

func TestGetInfluencerRequests(t *testing.T) {
	f := newRequestFixture()

	influencer := &models.Influencer{UserID: "inf-user", Name: "Aliya", CollabValue: 500}
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, influencer))

	collaboration := &models.Collaboration{BrandID: "brand-1", Name: "Summer Launch", Amount: 1000}
	require.NoError(t, f.collaborationRepo.Create(nil, collaboration))

	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: collaboration.ID, InfluencerID: influencer.ID, Status: models.RequestStatusInvited,
	}))
	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: "missing-collab", InfluencerID: influencer.ID, Status: models.RequestStatusPending,
	}))

	list, err := f.svc.GetInfluencerRequests(nil, "inf-user")
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)

	// Карточка коллаборации вкладывается, когда коллаборация находится
	var withCollab, withoutCollab int
	for _, item := range list.Requests {
		if item.Collaboration != nil {
			withCollab++
			assert.Equal(t, "Summer Launch", item.Collaboration.Name)
		} else {
			withoutCollab++
		}
	}
	assert.Equal(t, 1, withCollab)
	assert.Equal(t, 1, withoutCollab)
}

// ---------------- Переходы: сторона бренда ----------------

func TestInvitePromotesPendingRequest(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusPending)

	resp, notify, err := f.impl.inviteTx(nil, "brand-user", seed.collaboration.ID, seed.influencer.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusInvited), resp.Status)
	assert.Equal(t, models.RequestStatusInvited, seed.request.Status)

	// Приглашение переписывает уведомление пары, второго не появляется
	require.Len(t, f.notificationRepo.notifications, 1)
	assert.Equal(t, models.NotificationTypeCollaborationInvite, f.notificationRepo.notifications[0].Type)

	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "inf-token", "Приглашение в коллаборацию")
}

func TestInviteCreatesRequestWhenAbsent(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(0)

	resp, _, err := f.impl.inviteTx(nil, "brand-user", seed.collaboration.ID, seed.influencer.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusInvited), resp.Status)
	require.Len(t, f.requestRepo.requests, 1)
	assert.Equal(t, models.RequestStatusInvited, f.requestRepo.requests[0].Status)
}

func TestInviteAfterInfluencerReacted(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	// Инфлюенсер уже отреагировал: приглашение не затирает его решение
	_, _, err := f.impl.inviteTx(nil, "brand-user", seed.collaboration.ID, seed.influencer.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyExists)
	assert.Equal(t, models.RequestStatusInterested, seed.request.Status)
}

func TestInviteForeignCollaboration(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(0)

	other := &models.Brand{UserID: "other-user", Name: "OtherCo"}
	require.NoError(t, f.profileRepo.CreateBrand(nil, other))

	_, _, err := f.impl.inviteTx(nil, "other-user", seed.collaboration.ID, seed.influencer.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestAcceptCreatesChatAndNotifies(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	resp, notify, err := f.impl.acceptTx(nil, "brand-user", seed.request.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusAccepted), resp.Status)
	assert.Equal(t, models.CollaborationStatusAccepted, seed.collaboration.Status)

	// Чат бренд-инфлюенсер заведен внутри той же транзакции
	require.Len(t, f.chatRepo.chats, 1)
	assert.Equal(t, models.ChatPairKey("brand-user", "inf-user"), f.chatRepo.chats[0].PairKey)

	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "inf-token", "Заявка принята")

	select {
	case sent := <-f.emailProvider.templates:
		assert.Equal(t, []string{"aliya@mail.kz"}, sent.To)
		assert.Equal(t, "GlowCo", sent.Data["BrandName"])
	case <-time.After(2 * time.Second):
		t.Fatal("email о принятии не отправлен")
	}
}

func TestAcceptTwiceGuarded(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	_, _, err := f.impl.acceptTx(nil, "brand-user", seed.request.ID)
	require.NoError(t, err)

	// Повторное принятие упирается в guard, чат не дублируется
	_, _, err = f.impl.acceptTx(nil, "brand-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrAcceptedInfluencerExists)
	assert.Len(t, f.chatRepo.chats, 1)
}

func TestAcceptBlockedByAcceptedInfluencer(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	taken := &models.Influencer{UserID: "other-inf", Name: "Dana", CollabValue: 300}
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, taken))
	require.NoError(t, f.requestRepo.CreateIfAbsent(nil, &models.CollaborationRequest{
		CollaborationID: seed.collaboration.ID, InfluencerID: taken.ID, Status: models.RequestStatusAccepted,
	}))

	_, _, err := f.impl.acceptTx(nil, "brand-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrAcceptedInfluencerExists)
	assert.Equal(t, models.RequestStatusInterested, seed.request.Status)
}

func TestRejectNotifiesInfluencer(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	resp, notify, err := f.impl.rejectTx(nil, "brand-user", seed.request.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusRejected), resp.Status)

	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "inf-token", "Заявка отклонена")
}

func TestRejectGuardFromPending(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusPending)

	// По pending-записи инфлюенсер еще не обращался - решать нечего
	_, _, err := f.impl.rejectTx(nil, "brand-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
	assert.Equal(t, models.RequestStatusPending, seed.request.Status)
}

func TestCompleteFromAcceptedOnly(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusAccepted)

	resp, notify, err := f.impl.completeTx(nil, "brand-user", seed.request.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusCompleted), resp.Status)
	assert.Equal(t, models.CollaborationStatusCompleted, seed.collaboration.Status)

	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "inf-token", "Коллаборация завершена")
}

func TestCompleteGuardFromInterested(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	_, _, err := f.impl.completeTx(nil, "brand-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
}

// ---------------- Переходы: сторона инфлюенсера ----------------

func TestMarkInterestedPromotesPending(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusPending)

	resp, notify, err := f.impl.markInterestedTx(nil, "inf-user", seed.collaboration.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusInterested), resp.Status)

	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "brand-token", "Новая заявка")
}

func TestMarkInterestedCreatesRequestWhenAbsent(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(0)

	resp, _, err := f.impl.markInterestedTx(nil, "inf-user", seed.collaboration.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusInterested), resp.Status)
	require.Len(t, f.requestRepo.requests, 1)
}

func TestMarkInterestedGuardFromAccepted(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusAccepted)

	_, _, err := f.impl.markInterestedTx(nil, "inf-user", seed.collaboration.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
}

func TestAcceptInvitationFromInvitedOnly(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInvited)

	resp, notify, err := f.impl.acceptInvitationTx(nil, "inf-user", seed.request.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusAccepted), resp.Status)
	require.Len(t, f.chatRepo.chats, 1)

	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "brand-token", "Приглашение принято")
}

func TestAcceptInvitationGuardFromInterested(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)

	// Интерес выразил сам инфлюенсер, принимать тут нечего
	_, _, err := f.impl.acceptInvitationTx(nil, "inf-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
	assert.Empty(t, f.chatRepo.chats)
}

func TestDeclineNotifiesBrand(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInvited)

	resp, notify, err := f.impl.declineTx(nil, "inf-user", seed.request.ID)
	require.NoError(t, err)
	assert.Equal(t, int(models.RequestStatusRejected), resp.Status)

	// Бренд узнает об отказе push-ом, как и о любом другом переходе
	require.NotNil(t, notify)
	notify(nil)
	f.expectPush(t, "brand-token", "Заявка отклонена")
}

func TestDeclineGuardFromAccepted(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusAccepted)

	_, _, err := f.impl.declineTx(nil, "inf-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequestStatus)
	assert.Equal(t, models.RequestStatusAccepted, seed.request.Status)
}

func TestDeclineForeignRequest(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInvited)

	intruder := &models.Influencer{UserID: "other-inf", Name: "Dana", CollabValue: 300}
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, intruder))

	_, _, err := f.impl.declineTx(nil, "other-inf", seed.request.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	assert.Equal(t, models.RequestStatusInvited, seed.request.Status)
}

func TestTransitionsBlockedWhenCollaborationEnded(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInvited)
	past := time.Now().Add(-time.Hour)
	seed.collaboration.EndDate = &past

	_, _, err := f.impl.acceptInvitationTx(nil, "inf-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrCollaborationEnded)

	_, _, err = f.impl.markInterestedTx(nil, "inf-user", seed.collaboration.ID)
	assert.ErrorIs(t, err, apperrors.ErrCollaborationEnded)
}

func TestTransitionsBlockedWhenCollaborationClosed(t *testing.T) {
	f := newRequestFixture()
	seed := f.seedPair(models.RequestStatusInterested)
	seed.collaboration.Status = models.CollaborationStatusClosed

	_, _, err := f.impl.acceptTx(nil, "brand-user", seed.request.ID)
	assert.ErrorIs(t, err, apperrors.ErrCollaborationClosed)
}

func TestGetInfluencerRequestsUnknownProfile(t *testing.T) {
	f := newRequestFixture()

	_, err := f.svc.GetInfluencerRequests(nil, "nobody")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

package service

import (
	"context"
	"fmt"
	"time"

	"go-outlook-starter/core/constants"
	"go-outlook-starter/core/errors"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/modules/calendar/dto"
	"go-outlook-starter/modules/calendar/entity"
	"go-outlook-starter/modules/calendar/repository"
	"go-outlook-starter/modules/calendar/tasks"
	"go-outlook-starter/modules/outlook"
	userRepo "go-outlook-starter/modules/user/repository"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the slice of asynq.Client the service needs. A nil
// enqueuer disables background token refresh.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type CalendarService interface {
	// CreateEvent creates an Outlook calendar event using the user's
	// stored credentials.
	CreateEvent(ctx context.Context, userID int64, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError)
	// AccessToken returns a fresh delegated access token for the user's
	// active binding, refreshing it when near expiry.
	AccessToken(ctx context.Context, userID int64) (string, *errors.AppError)
	// RefreshUserTokens is the background refresh entry point.
	RefreshUserTokens(ctx context.Context, userID int64) error
	// Subscribe registers the credential-sync and lifecycle-logging
	// handlers on the bus.
	Subscribe(bus eventbus.Bus)
}

type calendarService struct {
	repo     repository.CalendarRepository
	userRepo userRepo.UserRepository
	graph    outlook.Client
	tokens   outlook.TokenRefresher
	enqueuer TaskEnqueuer
}

func NewCalendarService(
	repo repository.CalendarRepository,
	users userRepo.UserRepository,
	graph outlook.Client,
	tokens outlook.TokenRefresher,
	enqueuer TaskEnqueuer,
) CalendarService {
	return &calendarService{
		repo:     repo,
		userRepo: users,
		graph:    graph,
		tokens:   tokens,
		enqueuer: enqueuer,
	}
}

func (s *calendarService) Subscribe(bus eventbus.Bus) {
	bus.Subscribe(outlook.EventTokensSave, "calendar.tokens_save", s.handleTokensSave)
	bus.Subscribe(outlook.EventUserAuthenticated, "calendar.user_authenticated", s.handleUserAuthenticated)
	bus.Subscribe(outlook.EventCalendarEventCreated, "calendar.log", s.handleEventNotification)
	bus.Subscribe(outlook.EventCalendarEventUpdated, "calendar.log", s.handleEventNotification)
	bus.Subscribe(outlook.EventCalendarEventDeleted, "calendar.log", s.handleEventNotification)
}

// CreateEvent implements the synchronous request path: credential lookup,
// token freshness, one Graph call. The only validated precondition is the
// presence of an active binding.
func (s *calendarService) CreateEvent(ctx context.Context, userID int64, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError) {
	cal, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		logger.Error("CalendarService:CreateEvent:FindActiveByUser:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar binding", err)
	}
	if cal == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Outlook account not connected. Please connect your Outlook account first", nil)
	}

	accessToken, appErr := s.ensureValidToken(ctx, cal)
	if appErr != nil {
		return nil, appErr
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	event := &outlook.Event{
		Subject: req.Name,
		Start:   outlook.DateTimeTimeZone{DateTime: req.StartDateTime, TimeZone: timezone},
		End:     outlook.DateTimeTimeZone{DateTime: req.EndDateTime, TimeZone: timezone},
	}

	created, err := s.graph.CreateEvent(ctx, accessToken, cal.CalendarID, event)
	if err != nil {
		logger.Error("CalendarService:CreateEvent:Graph:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create calendar event", err)
	}

	logger.Info("CalendarService:CreateEvent:Success",
		"user_id", userID, "event_id", created.ID, "subject", req.Name)

	return &dto.CreateEventResponse{
		EventID:  created.ID,
		WebLink:  created.WebLink,
		Subject:  req.Name,
		Start:    req.StartDateTime,
		End:      req.EndDateTime,
		Timezone: timezone,
	}, nil
}

// AccessToken serves other modules that call Graph as the user, the email
// sender among them.
func (s *calendarService) AccessToken(ctx context.Context, userID int64) (string, *errors.AppError) {
	cal, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		logger.Error("CalendarService:AccessToken:FindActiveByUser:Error", "user_id", userID, "error", err)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to load calendar binding", err)
	}
	if cal == nil {
		return "", errors.NewAppError(errors.ErrNotFound, "Outlook account not connected. Please connect your Outlook account first", nil)
	}
	return s.ensureValidToken(ctx, cal)
}

// RefreshUserTokens refreshes and persists the token pair for the user's
// active binding. Called by the asynq worker; a user without a binding is
// not an error, the task is simply stale.
func (s *calendarService) RefreshUserTokens(ctx context.Context, userID int64) error {
	cal, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if cal == nil {
		logger.Warn("CalendarService:RefreshUserTokens:NoBinding", "user_id", userID)
		return nil
	}

	if _, err := s.refreshAndPersist(ctx, cal); err != nil {
		logger.Error("CalendarService:RefreshUserTokens:Error", "user_id", userID, "error", err)
		return err
	}
	return nil
}

// ensureValidToken returns a usable access token, refreshing and persisting
// the pair when the stored one is at or near expiry.
func (s *calendarService) ensureValidToken(ctx context.Context, cal *entity.UserCalendar) (string, *errors.AppError) {
	if time.Now().Before(cal.TokenExpiry.Add(-constants.TokenRefreshLeeway)) {
		return cal.AccessToken, nil
	}

	logger.Info("CalendarService:ensureValidToken:Refreshing", "user_id", cal.UserID)

	token, err := s.refreshAndPersist(ctx, cal)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to refresh Outlook token", err)
	}
	return token, nil
}

func (s *calendarService) refreshAndPersist(ctx context.Context, cal *entity.UserCalendar) (string, error) {
	pair, err := s.tokens.Refresh(ctx, cal.RefreshToken)
	if err != nil {
		return "", err
	}

	expiresIn := pair.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = constants.DefaultTokenExpirySeconds
	}
	expiry := time.Now().Add(time.Duration(expiresIn) * time.Second)

	if err := s.repo.UpdateTokens(ctx, cal.ID, pair.AccessToken, pair.RefreshToken, expiry); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	cal.AccessToken = pair.AccessToken
	cal.RefreshToken = pair.RefreshToken
	cal.TokenExpiry = expiry

	s.scheduleRefresh(cal.UserID, expiry)
	return pair.AccessToken, nil
}

// handleTokensSave persists a freshly issued token pair. Errors propagate to
// the bus so the OAuth callback can surface them.
func (s *calendarService) handleTokensSave(ctx context.Context, evt eventbus.Event) error {
	payload, ok := evt.Payload.(outlook.TokensSavePayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", evt.Payload, evt.Kind)
	}

	logger.Info("CalendarService:handleTokensSave:Start",
		"user_id", payload.LocalUserID, "external_user_id", payload.ExternalUserID)

	user, err := s.userRepo.EnsureExists(ctx, payload.LocalUserID)
	if err != nil {
		logger.Error("CalendarService:handleTokensSave:EnsureUser:Error", "user_id", payload.LocalUserID, "error", err)
		return err
	}

	existing, err := s.repo.FindActiveByUser(ctx, user.ID)
	if err != nil {
		logger.Error("CalendarService:handleTokensSave:FindActiveByUser:Error", "user_id", user.ID, "error", err)
		return err
	}

	calendarID := ""
	if existing != nil {
		calendarID = existing.CalendarID
	}
	if calendarID == "" {
		calendar, err := s.graph.GetDefaultCalendar(ctx, payload.AccessToken)
		if err != nil {
			logger.Error("CalendarService:handleTokensSave:GetDefaultCalendar:Error", "user_id", user.ID, "error", err)
			return err
		}
		calendarID = calendar.ID
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = constants.DefaultTokenExpirySeconds
	}
	expiry := time.Now().Add(time.Duration(expiresIn) * time.Second)

	cal := &entity.UserCalendar{
		UserID:         user.ID,
		ExternalUserID: payload.ExternalUserID,
		CalendarID:     calendarID,
		AccessToken:    payload.AccessToken,
		RefreshToken:   payload.RefreshToken,
		TokenExpiry:    expiry,
		Active:         true,
	}
	if err := s.repo.UpsertActive(ctx, cal); err != nil {
		logger.Error("CalendarService:handleTokensSave:Upsert:Error", "user_id", user.ID, "error", err)
		return err
	}

	logger.Info("CalendarService:handleTokensSave:Saved",
		"user_id", user.ID, "calendar_id", calendarID, "token_expiry", expiry)

	s.scheduleRefresh(user.ID, expiry)
	return nil
}

// handleUserAuthenticated carries no tokens; it lazily creates the user and
// backfills a missing calendar id using the stored credentials. Failures are
// logged by the bus and go nowhere else, there is no caller to report to.
func (s *calendarService) handleUserAuthenticated(ctx context.Context, evt eventbus.Event) error {
	payload, ok := evt.Payload.(outlook.UserAuthenticatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", evt.Payload, evt.Kind)
	}

	logger.Info("CalendarService:handleUserAuthenticated:Start",
		"user_id", payload.LocalUserID, "external_user_id", payload.ExternalUserID)

	user, err := s.userRepo.EnsureExists(ctx, payload.LocalUserID)
	if err != nil {
		return err
	}

	cal, err := s.repo.FindActiveByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if cal == nil || cal.CalendarID != "" {
		return nil
	}

	accessToken, appErr := s.ensureValidToken(ctx, cal)
	if appErr != nil {
		return appErr
	}

	calendar, err := s.graph.GetDefaultCalendar(ctx, accessToken)
	if err != nil {
		return err
	}

	cal.CalendarID = calendar.ID
	cal.ExternalUserID = payload.ExternalUserID
	return s.repo.UpsertActive(ctx, cal)
}

// handleEventNotification only logs; change notifications carry ids, not
// content, and this sample does not mirror remote events locally.
func (s *calendarService) handleEventNotification(ctx context.Context, evt eventbus.Event) error {
	notification, ok := evt.Payload.(outlook.ChangeNotification)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", evt.Payload, evt.Kind)
	}

	logger.Info("CalendarService:EventNotification",
		"kind", string(evt.Kind),
		"change_type", notification.ChangeType,
		"resource", notification.Resource,
		"resource_id", notification.ResourceData.ID,
	)
	return nil
}

func (s *calendarService) scheduleRefresh(userID int64, expiry time.Time) {
	if s.enqueuer == nil {
		return
	}

	task, err := tasks.NewTokenRefreshTask(userID)
	if err != nil {
		logger.Error("CalendarService:scheduleRefresh:NewTask:Error", "user_id", userID, "error", err)
		return
	}

	processAt := expiry.Add(-constants.TokenRefreshLeeway)
	if _, err := s.enqueuer.Enqueue(task, asynq.ProcessAt(processAt)); err != nil {
		logger.Error("CalendarService:scheduleRefresh:Enqueue:Error", "user_id", userID, "error", err)
		return
	}
	logger.Info("CalendarService:scheduleRefresh:Enqueued", "user_id", userID, "process_at", processAt)
}

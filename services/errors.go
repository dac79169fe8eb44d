package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrInvalidScore           = errors.New("score is not a valid final score for the match format")
	ErrInvalidPrediction      = errors.New("predicted winner does not match the predicted score")
	ErrBettingClosed          = errors.New("betting is closed for this match")
	ErrMatchNotFinished       = errors.New("match is not finished")
	ErrMatchAlreadyFinished   = errors.New("match is already finished")
	ErrSlotsNotSeeded         = errors.New("match slots are not seeded yet")
	ErrBracketInvalid         = errors.New("bracket graph validation failed")
	ErrTournamentNotDraft     = errors.New("tournament is not in draft status")
	ErrSeedingTableUnknown    = errors.New("unknown seeding table")
	ErrAdjustmentInvalid      = errors.New("point adjustment must have a non-zero delta and a reason")

	// Нарушение целостности данных: завершённый матч в состоянии, из
	// которого нельзя корректно начислить очки. Никогда не маскируется
	// нулевым начислением.
	ErrDataIntegrity = errors.New("data integrity violation")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (дублируют ErrNotFound, но дают больше контекста)
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrBetNotFound        = errors.New("bet not found")
	ErrTournamentNotFound = errors.New("tournament not found")
)

package scoring

import (
	"testing"

	"github.com/Dosada05/betting-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func finishedMatch(teamA, teamB, winner, scoreA, scoreB int) *models.Match {
	return &models.Match{
		ID:       10,
		Status:   models.MatchStatusFinished,
		TeamAID:  intPtr(teamA),
		TeamBID:  intPtr(teamB),
		WinnerID: intPtr(winner),
		ScoreA:   intPtr(scoreA),
		ScoreB:   intPtr(scoreB),
	}
}

func TestParseBestOf(t *testing.T) {
	tests := []struct {
		format string
		want   int
	}{
		{"bo1", 1},
		{"bo3", 3},
		{"bo5", 5},
		{"bo7", 7},
		{"BO3", 3},
		{"playoffs_bo5", 5},
		{"grand_final_Bo7", 7},
		{"", 5},
		{"best of something", 5},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBestOf(tt.format))
		})
	}
}

func TestWinsNeeded(t *testing.T) {
	assert.Equal(t, 1, WinsNeeded(1))
	assert.Equal(t, 2, WinsNeeded(3))
	assert.Equal(t, 3, WinsNeeded(5))
	assert.Equal(t, 4, WinsNeeded(7))
}

func TestValidateFinalScore(t *testing.T) {
	tests := []struct {
		name           string
		scoreA, scoreB int
		bestOf         int
		wantErr        bool
	}{
		{"bo5 clean win", 3, 1, 5, false},
		{"bo5 reverse", 0, 3, 5, false},
		{"bo5 both at threshold", 3, 3, 5, true},
		{"bo5 nobody at threshold", 2, 1, 5, true},
		{"bo5 over threshold", 4, 1, 5, true},
		{"bo1 valid", 1, 0, 1, false},
		{"bo1 invalid", 1, 1, 1, true},
		{"negative score", -1, 3, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFinalScore(tt.scoreA, tt.scoreB, tt.bestOf)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScoreBet(t *testing.T) {
	match := finishedMatch(1, 2, 1, 3, 1)

	tests := []struct {
		name       string
		bet        *models.Bet
		wantPoints int
		wantPick   bool
		wantReason Reason
	}{
		{
			name:       "perfect pick",
			bet:        &models.Bet{ID: 1, PredictedWinnerID: 1, PredictedScoreA: 3, PredictedScoreB: 1},
			wantPoints: PerfectScorePoints,
			wantPick:   true,
			wantReason: ReasonPerfectPick,
		},
		{
			name:       "correct winner wrong score",
			bet:        &models.Bet{ID: 2, PredictedWinnerID: 1, PredictedScoreA: 3, PredictedScoreB: 0},
			wantPoints: CorrectWinnerPoints,
			wantReason: ReasonCorrectWinner,
		},
		{
			name:       "wrong winner",
			bet:        &models.Bet{ID: 3, PredictedWinnerID: 2, PredictedScoreA: 1, PredictedScoreB: 3},
			wantPoints: 0,
			wantReason: ReasonWrongPrediction,
		},
		{
			// Счёт совпал по значениям, но привязан к сторонам A/B:
			// 1-3 не равен фактическим 3-1.
			name:       "mirrored score is not exact",
			bet:        &models.Bet{ID: 4, PredictedWinnerID: 1, PredictedScoreA: 1, PredictedScoreB: 3},
			wantPoints: CorrectWinnerPoints,
			wantReason: ReasonCorrectWinner,
		},
		{
			name:       "stale bet on team no longer in match",
			bet:        &models.Bet{ID: 5, PredictedWinnerID: 99, PredictedScoreA: 3, PredictedScoreB: 1},
			wantPoints: 0,
			wantReason: ReasonInvalidPrediction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreBet(match, tt.bet)
			require.NoError(t, err)
			assert.Equal(t, tt.bet.ID, got.BetID)
			assert.Equal(t, tt.wantPoints, got.Points)
			assert.Equal(t, tt.wantPick, got.IsPerfectPick)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestScoreBetIdempotent(t *testing.T) {
	match := finishedMatch(7, 8, 8, 1, 3)
	bet := &models.Bet{ID: 1, PredictedWinnerID: 8, PredictedScoreA: 1, PredictedScoreB: 3}

	first, err := ScoreBet(match, bet)
	require.NoError(t, err)
	second, err := ScoreBet(match, bet)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreBetIntegrityErrors(t *testing.T) {
	tests := []struct {
		name  string
		match *models.Match
	}{
		{
			name: "not finished",
			match: &models.Match{ID: 1, Status: models.MatchStatusLive,
				TeamAID: intPtr(1), TeamBID: intPtr(2)},
		},
		{
			name: "finished without winner",
			match: &models.Match{ID: 2, Status: models.MatchStatusFinished,
				TeamAID: intPtr(1), TeamBID: intPtr(2), ScoreA: intPtr(3), ScoreB: intPtr(0)},
		},
		{
			name: "winner is neither team",
			match: &models.Match{ID: 3, Status: models.MatchStatusFinished,
				TeamAID: intPtr(1), TeamBID: intPtr(2), WinnerID: intPtr(9),
				ScoreA: intPtr(3), ScoreB: intPtr(0)},
		},
		{
			name: "unassigned slot",
			match: &models.Match{ID: 4, Status: models.MatchStatusFinished,
				TeamAID: intPtr(1), WinnerID: intPtr(1), ScoreA: intPtr(3), ScoreB: intPtr(0)},
		},
		{
			name: "no score recorded",
			match: &models.Match{ID: 5, Status: models.MatchStatusFinished,
				TeamAID: intPtr(1), TeamBID: intPtr(2), WinnerID: intPtr(1)},
		},
	}

	bet := &models.Bet{ID: 1, PredictedWinnerID: 1}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScoreBet(tt.match, bet)
			require.Error(t, err)
			var integrity *DataIntegrityError
			assert.ErrorAs(t, err, &integrity)
			assert.Equal(t, tt.match.ID, integrity.MatchID)
		})
	}
}

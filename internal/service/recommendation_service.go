package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/models"
	appErrors "github.com/learnytics/insights-api/pkg/errors"
)

// durationScaleFactor matches the magnitude the external model was trained
// on. The scoring service expects durations multiplied by exactly this
// factor; changing it breaks the service contract.
const durationScaleFactor = 50

// Recommendation message variants per learning style. The ML path picks one
// uniformly at random; unknown labels fall back to the consistent_learner
// list.
var recommendationVariants = map[string][]string{
	models.InsightFastLearner: {
		`Kecepatan Anda luar biasa! Tantang diri Anda dengan proyek "Capstone" yang lebih kompleks untuk menguji kedalaman pemahaman Anda, bukan hanya kecepatan penyelesaian.`,
		"Anda belajar dengan sangat cepat! Cobalah mengajarkan materi kepada orang lain untuk memperdalam pemahaman Anda.",
		"Kecepatan belajar Anda tinggi! Coba tantang diri dengan materi lanjutan atau proyek yang lebih kompleks.",
	},
	models.InsightConsistentLearner: {
		"Konsistensi adalah kunci penguasaan skill jangka panjang. Cobalah tingkatkan sedikit demi sedikit kesulitan materi harian Anda (Progressive Overload) agar tidak stagnan.",
		"Kedisiplinan Anda sangat baik! Pertahankan ritme belajar dan naikkan target 10% setiap minggu.",
		"Pola belajar Anda sangat teratur! Ini adalah fondasi yang kuat untuk penguasaan jangka panjang.",
	},
	models.InsightReflectiveLearner: {
		`Pendekatan mendalam Anda sangat bagus untuk konsep sulit. Buatlah "Dev Log" atau blog teknis untuk mendokumentasikan pemahaman Anda, ini akan sangat memperkuat ingatan jangka panjang.`,
		"Anda menghabiskan waktu yang cukup untuk memahami materi dengan mendalam. Cobalah membuat catatan atau mind map untuk memperkuat pemahaman.",
		"Pendekatan reflektif Anda sangat baik untuk pemahaman mendalam. Pertimbangkan untuk membuat dokumentasi atau tutorial dari apa yang Anda pelajari.",
	},
}

// Short single-line texts used by the local fallback classifier.
var fallbackTexts = map[string]string{
	models.InsightFastLearner:       "Kecepatan belajar Anda tinggi! Coba tantang diri dengan materi lanjutan",
	models.InsightConsistentLearner: "Pertahankan ritme belajar, naikkan target 10%",
	models.InsightReflectiveLearner: "Pendekatan mendalam Anda sangat baik untuk pemahaman jangka panjang",
}

type mlRecord struct {
	Module          string `json:"module"`
	Score           int    `json:"score"`
	DurationMinutes int    `json:"duration_minutes"`
	Completed       bool   `json:"completed"`
	Date            string `json:"date"`
}

type mlRequest struct {
	UserID  string     `json:"user_id"`
	Records []mlRecord `json:"records"`
}

type mlResponse struct {
	Insight      string                `json:"insight"`
	Metrics      models.InsightMetrics `json:"metrics"`
	ModelVersion string                `json:"model_version"`
}

// RecommendationService resolves per-student learning recommendations. It
// makes one bounded attempt against the external scoring service and falls
// back to a local rule table on any failure; the failure is logged, never
// surfaced to the caller.
type RecommendationService struct {
	source  ActivitySource
	client  *http.Client
	baseURL string
	logger  *zap.Logger
	pick    func(n int) int
}

// NewRecommendationService constructs the service. The pick function
// selects among message variants and may be nil, in which case a seeded
// PRNG is used; tests inject a deterministic one.
func NewRecommendationService(source ActivitySource, baseURL string, timeout time.Duration, logger *zap.Logger, pick func(n int) int) *RecommendationService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pick == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		pick = rng.Intn
	}
	return &RecommendationService{
		source:  source,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		pick:    pick,
	}
}

// ResolveStudentID maps a numeric user id onto the s-prefixed student id
// used by the records view: the id is left-padded to three digits and the
// first three kept (494342 -> s494, 12 -> s012). Non-numeric ids pass
// through unchanged.
func ResolveStudentID(raw string) string {
	if raw == "" || !isDigits(raw) {
		return raw
	}
	padded := raw
	for len(padded) < 3 {
		padded = "0" + padded
	}
	return "s" + padded[:3]
}

// Recommend runs the recommendation state machine for one student.
func (s *RecommendationService) Recommend(ctx context.Context, studentID string) (models.Recommendation, error) {
	resolved := ResolveStudentID(studentID)

	records, err := s.source.ListByStudent(ctx, resolved)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("fetch student records: %w", err)
	}
	if len(records) == 0 {
		return models.Recommendation{}, appErrors.ErrStudentNotFound
	}

	if rec, err := s.fromMLService(ctx, studentID, records); err == nil {
		return rec, nil
	} else {
		s.logger.Warn("ml service unavailable, using fallback",
			zap.String("student_id", resolved), zap.Error(err))
	}

	return s.fallback(studentID, records), nil
}

func (s *RecommendationService) fromMLService(ctx context.Context, studentID string, records []models.ActivityRecord) (models.Recommendation, error) {
	payload := mlRequest{UserID: studentID, Records: make([]mlRecord, 0, len(records))}
	for _, r := range records {
		payload.Records = append(payload.Records, mlRecord{
			Module:          r.Module,
			Score:           r.Score,
			DurationMinutes: r.DurationMinutes * durationScaleFactor,
			Completed:       r.Completed,
			Date:            r.Day(),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("marshal ml request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/ml/insight", bytes.NewReader(body))
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("build ml request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("call ml service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return models.Recommendation{}, fmt.Errorf("ml service returned status %d", resp.StatusCode)
	}

	var result mlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Recommendation{}, fmt.Errorf("decode ml response: %w", err)
	}

	insight := result.Insight
	if insight == "" {
		insight = models.InsightConsistentLearner
	}
	variants, ok := recommendationVariants[insight]
	if !ok {
		variants = recommendationVariants[models.InsightConsistentLearner]
	}

	return models.Recommendation{
		StudentID:      studentID,
		Insight:        insight,
		Recommendation: variants[s.pick(len(variants))],
		Metrics:        result.Metrics,
		ModelVersion:   result.ModelVersion + "_backend_logic",
		Source:         models.SourceMLService,
	}, nil
}

// fallback classifies the student from their own records: at least five
// activities per active day means a fast learner, at least an hour of
// average session time a reflective one, anything else a consistent
// learner. Modules averaging below 75 get a practice flag.
func (s *RecommendationService) fallback(studentID string, records []models.ActivityRecord) models.Recommendation {
	type moduleStats struct {
		scoreSum int
		count    int
	}
	order := make([]string, 0)
	modules := make(map[string]*moduleStats)
	days := make(map[string]struct{})

	var totalTime, completedCount int
	for _, r := range records {
		m, ok := modules[r.Module]
		if !ok {
			m = &moduleStats{}
			modules[r.Module] = m
			order = append(order, r.Module)
		}
		m.scoreSum += r.Score
		m.count++
		days[r.Day()] = struct{}{}
		totalTime += r.DurationMinutes
		if r.Completed {
			completedCount++
		}
	}

	avgTimePerModule := float64(totalTime) / float64(len(records))
	completionRate := float64(completedCount) / float64(len(records))
	activitiesPerDay := float64(len(records))
	if len(days) > 0 {
		activitiesPerDay = float64(len(records)) / float64(len(days))
	}

	insight := models.InsightConsistentLearner
	if activitiesPerDay >= 5 {
		insight = models.InsightFastLearner
	} else if avgTimePerModule >= 60 {
		insight = models.InsightReflectiveLearner
	}

	var flags []models.ModuleRecommendation
	for _, module := range order {
		m := modules[module]
		if float64(m.scoreSum)/float64(m.count) < 75 {
			flags = append(flags, models.ModuleRecommendation{
				Type:     "practice",
				Module:   module,
				Reason:   "Need more practice to improve",
				Priority: "medium",
			})
		}
	}

	learningSpeed := 0.5
	if avgTimePerModule < 40 {
		learningSpeed = 0.8
	}

	return models.Recommendation{
		StudentID:      studentID,
		Insight:        insight,
		Recommendation: fallbackTexts[insight],
		Metrics: models.InsightMetrics{
			ConsistencyScore: math.Min(completionRate+0.2, 1),
			LearningSpeed:    learningSpeed,
			AvgModuleTime:    math.Round(avgTimePerModule),
		},
		ModuleRecommendations: flags,
		Source:                models.SourceFallback,
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

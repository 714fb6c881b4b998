package models

// Learning style labels produced by the recommendation paths.
const (
	InsightFastLearner       = "fast_learner"
	InsightConsistentLearner = "consistent_learner"
	InsightReflectiveLearner = "reflective_learner"
)

// Recommendation source tags. Callers rely on the tag to tell which path
// produced the payload.
const (
	SourceMLService = "ml-service-db"
	SourceFallback  = "fallback-db"
)

// InsightMetrics carries the numeric features behind a recommendation.
type InsightMetrics struct {
	ConsistencyScore float64  `json:"consistency_score"`
	LearningSpeed    float64  `json:"learning_speed"`
	AvgModuleTime    float64  `json:"avg_module_time"`
	CompletionRate   *float64 `json:"completion_rate,omitempty"`
	TotalModules     *int     `json:"total_modules,omitempty"`
	AvgScore         *float64 `json:"avg_score,omitempty"`
}

// ModuleRecommendation flags a module needing remediation.
type ModuleRecommendation struct {
	Type     string `json:"type"`
	Module   string `json:"module"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// Recommendation is the unified output of both the ML path and the local
// fallback classifier.
type Recommendation struct {
	StudentID             string                 `json:"studentId"`
	Insight               string                 `json:"insight"`
	Recommendation        string                 `json:"recommendation"`
	Metrics               InsightMetrics         `json:"metrics"`
	ModuleRecommendations []ModuleRecommendation `json:"moduleRecommendations,omitempty"`
	ModelVersion          string                 `json:"modelVersion,omitempty"`
	Source                string                 `json:"source"`
}

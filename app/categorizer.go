package app

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"unicode"

	"focustrack/internal"
	"focustrack/internal/errors"
	"focustrack/models"
	"focustrack/ports"
)

// DefaultMinConfidence is the floor a classifier result must clear before
// it is applied to an activity.
const DefaultMinConfidence = 0.7

// Priorities for learned rules. Deliberately non-overlapping: URL-host
// rules outrank app rules, which outrank title rules, with numeric room
// left between tiers for hand-authored rules.
const (
	learnedURLPriority   = 3
	learnedAppPriority   = 15
	learnedTitlePriority = 25
)

// fuzzyNameThreshold is the character-set overlap ratio a project name must
// exceed in the last findProject tier. Coarse on purpose: it tolerates
// transcription errors from voice input.
const fuzzyNameThreshold = 0.8

// titleKeywordMinLen is the minimum length of a title token worth learning
// a rule from.
const titleKeywordMinLen = 5

var titleStopWords = map[string]bool{
	"about": true, "after": true, "before": true, "document": true,
	"google": true, "https": true, "index": true, "login": true,
	"online": true, "other": true, "page": true, "search": true,
	"untitled": true, "window": true, "where": true, "which": true,
}

// Categorizer assigns activities to projects: deterministic rules first,
// the external classifier second, with manual input handled upstream and
// converted into new rules here. It owns in-memory snapshots of projects
// and rules, refreshed explicitly after any mutation.
type Categorizer struct {
	projects   ports.ProjectRepository
	rules      ports.RuleRepository
	classifier ports.Classifier
	logger     *internal.Logger

	// MinConfidence is the classifier acceptance floor.
	MinConfidence float64

	mu           sync.RWMutex
	projectCache []models.Project
	ruleCache    []models.CategoryRule
	loaded       bool
}

// NewCategorizer creates a categorization engine.
func NewCategorizer(projects ports.ProjectRepository, rules ports.RuleRepository, classifier ports.Classifier, logger *internal.Logger) *Categorizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Categorizer{
		projects:      projects,
		rules:         rules,
		classifier:    classifier,
		logger:        logger,
		MinConfidence: DefaultMinConfidence,
	}
}

// Refresh reloads the project and rule caches from storage. Callers must
// invoke it after any project or rule mutation; reads see the new snapshot
// atomically.
func (c *Categorizer) Refresh(ctx context.Context) error {
	projects, err := c.projects.List(ctx, true)
	if err != nil {
		return errors.Wrap(err, "failed to load projects")
	}
	rules, err := c.rules.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load rules")
	}
	sortRules(rules)

	c.mu.Lock()
	c.projectCache = projects
	c.ruleCache = rules
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Invalidate drops the caches; the next read reloads them.
func (c *Categorizer) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

func (c *Categorizer) snapshot(ctx context.Context) ([]models.Project, []models.CategoryRule) {
	c.mu.RLock()
	if c.loaded {
		projects, rules := c.projectCache, c.ruleCache
		c.mu.RUnlock()
		return projects, rules
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Error("cache refresh failed: %v", err)
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectCache, c.ruleCache
}

// Categorize resolves a project for one focus context. Rules are
// authoritative and cheap, so a rule match short-circuits the classifier.
// A nil return means no signal: the activity stays uncategorized pending
// manual input.
func (c *Categorizer) Categorize(ctx context.Context, appName, windowTitle, urlStr string) *models.Categorization {
	projects, rules := c.snapshot(ctx)

	if rule := MatchRules(rules, appName, windowTitle, urlStr); rule != nil {
		return &models.Categorization{
			ProjectID:  rule.ProjectID,
			Confidence: 1.0,
			Source:     models.SourceRule,
		}
	}

	if c.classifier == nil || len(projects) == 0 || !c.classifier.Available(ctx) {
		return nil
	}

	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}

	result, err := c.classifier.Classify(ctx, ports.ClassifyRequest{
		AppName:     appName,
		WindowTitle: windowTitle,
		URL:         urlStr,
		Projects:    names,
	})
	if err != nil {
		c.logger.Warn("classifier error: %v", err)
		return nil
	}
	if result == nil {
		return nil
	}

	// Resolve the guessed name by case-insensitive exact match only. A
	// guess naming an unknown project is a non-match.
	var match *models.Project
	for i := range projects {
		if strings.EqualFold(projects[i].Name, result.Project) {
			match = &projects[i]
			break
		}
	}
	if match == nil {
		c.logger.Debug("classifier guessed unknown project %q", result.Project)
		return nil
	}
	if result.Confidence < c.MinConfidence {
		c.logger.Debug("classifier confidence %.2f below floor %.2f for %q",
			result.Confidence, c.MinConfidence, match.Name)
		return nil
	}

	return &models.Categorization{
		ProjectID:  match.ID,
		Confidence: result.Confidence,
		Source:     models.SourceClassifier,
	}
}

// FindProject resolves a (possibly spoken) project name. Three tiers, each
// exhausted across all projects before falling through: exact match,
// substring match in either direction, then character-set similarity.
func (c *Categorizer) FindProject(ctx context.Context, name string) *models.Project {
	projects, _ := c.snapshot(ctx)
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	for i := range projects {
		if strings.ToLower(projects[i].Name) == needle {
			return &projects[i]
		}
	}

	for i := range projects {
		candidate := strings.ToLower(projects[i].Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &projects[i]
		}
	}

	for i := range projects {
		if charSetSimilarity(needle, strings.ToLower(projects[i].Name)) > fuzzyNameThreshold {
			return &projects[i]
		}
	}

	return nil
}

// LearnFromManual synthesizes deterministic rules from one confirmed manual
// categorization so the same context is matched without the classifier next
// time. Near-duplicates (same kind + pattern) are silently skipped.
func (c *Categorizer) LearnFromManual(ctx context.Context, appName, windowTitle, urlStr, projectID string) error {
	if appName == "" || projectID == "" {
		return errors.InvalidInput("app name and project id are required")
	}

	_, existing := c.snapshot(ctx)

	candidates := []models.CategoryRule{
		models.NewCategoryRule(learnedAppPriority, models.RuleKindApp, appName, projectID),
	}
	if host := hostOf(urlStr); host != "" {
		candidates = append(candidates,
			models.NewCategoryRule(learnedURLPriority, models.RuleKindURL, host, projectID))
	}
	if keyword := titleKeyword(windowTitle); keyword != "" {
		candidates = append(candidates,
			models.NewCategoryRule(learnedTitlePriority, models.RuleKindTitle, keyword, projectID))
	}

	inserted := 0
	for _, candidate := range candidates {
		if candidate.Pattern == "" || hasDuplicate(existing, candidate) {
			continue
		}
		rule := candidate
		if err := c.rules.Insert(ctx, &rule); err != nil {
			return errors.Wrap(err, "failed to insert learned rule")
		}
		existing = append(existing, rule)
		inserted++
	}

	if inserted > 0 {
		c.logger.Info("learned %d rule(s) for project %s from manual correction", inserted, projectID)
		return c.Refresh(ctx)
	}
	return nil
}

func hasDuplicate(rules []models.CategoryRule, candidate models.CategoryRule) bool {
	for _, r := range rules {
		if r.SameMatcher(candidate) {
			return true
		}
	}
	return false
}

// hostOf extracts the host component of a URL, or "" if there is none.
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// titleKeyword extracts the first qualifying keyword from a window title:
// lowercase alphanumeric-delimited token longer than four characters that
// is not a stop word.
func titleKeyword(title string) string {
	tokens := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		if len(token) >= titleKeywordMinLen && !titleStopWords[token] {
			return token
		}
	}
	return ""
}

// charSetSimilarity computes |chars(a) ∩ chars(b)| / max(|chars(a)|,
// |chars(b)|). Coarse: short names can score high against unrelated names.
func charSetSimilarity(a, b string) float64 {
	setA := make(map[rune]bool)
	for _, r := range a {
		setA[r] = true
	}
	setB := make(map[rune]bool)
	for _, r := range b {
		setB[r] = true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(intersection) / float64(larger)
}

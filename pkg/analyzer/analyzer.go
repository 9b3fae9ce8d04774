package analyzer

import (
	"sort"
	"strings"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/berkguzel/iamgen/pkg/policy"
	"github.com/berkguzel/iamgen/pkg/types"
)

// Classifier maps a "service:Action" token onto its access level.
type Classifier interface {
	Classify(token string) (access.Level, bool)
}

type Analyzer struct {
	classifier Classifier
}

func New(classifier Classifier) *Analyzer {
	return &Analyzer{
		classifier: classifier,
	}
}

// Analyze reports, per statement, the action/resource pairs it grants and
// its actions grouped by access level.
func (a *Analyzer) Analyze(doc *policy.ParsedDocument) []types.Report {
	reports := make([]types.Report, 0, len(doc.Statement))
	for _, stmt := range doc.Statement {
		reports = append(reports, a.analyzeStatement(stmt))
	}
	return reports
}

func (a *Analyzer) analyzeStatement(stmt policy.Statement) types.Report {
	actions := stmt.Actions()
	if len(actions) == 0 {
		actions = stmt.NotActions()
	}

	report := types.Report{
		Sid:         stmt.Sid,
		Effect:      stmt.Effect,
		Permissions: a.processPermissions(stmt),
		ByLevel:     make(map[string][]string),
	}

	for _, action := range actions {
		level, ok := a.classifier.Classify(action)
		if !ok {
			report.Unknown = append(report.Unknown, action)
			continue
		}
		report.ByLevel[level.String()] = append(report.ByLevel[level.String()], action)
	}

	return report
}

func (a *Analyzer) processPermissions(stmt policy.Statement) []types.PermissionDisplay {
	var displays []types.PermissionDisplay

	actions := stmt.Actions()
	if len(actions) == 0 {
		actions = stmt.NotActions()
	}
	resources := stmt.Resources()
	if len(resources) == 0 {
		resources = stmt.NotResources()
	}
	if len(resources) == 0 {
		resources = []string{"*"}
	}

	for _, action := range actions {
		level := ""
		if l, ok := a.classifier.Classify(action); ok {
			level = l.String()
		}
		for _, resource := range resources {
			displays = append(displays, types.PermissionDisplay{
				Action:       action,
				Resource:     resource,
				Effect:       stmt.Effect,
				AccessLevel:  level,
				IsBroad:      strings.Contains(action, "*") || strings.Contains(resource, "*"),
				IsHighRisk:   isHighRiskPermission(action, resource) || isHighRiskService(action),
				HasCondition: stmt.HasCondition(),
				Risk:         riskDescription(action, resource),
			})
		}
	}

	// Sort permissions (broad/high-risk ones first)
	sort.SliceStable(displays, func(i, j int) bool {
		if displays[i].IsHighRisk != displays[j].IsHighRisk {
			return displays[i].IsHighRisk
		}
		if displays[i].IsBroad != displays[j].IsBroad {
			return displays[i].IsBroad
		}
		return displays[i].Action < displays[j].Action
	})

	return displays
}

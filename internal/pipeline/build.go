package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/itemflow/internal/config"
	"github.com/nguyentantai21042004/itemflow/internal/processor"
	"github.com/nguyentantai21042004/itemflow/internal/strategy"
	"github.com/nguyentantai21042004/itemflow/pkg/executor"
)

// Stage types accepted in configuration
const (
	StageIdentity    = "identity"
	StageUppercase   = "uppercase"
	StageLowercase   = "lowercase"
	StageTrim        = "trim"
	StageTitle       = "title"
	StageFold        = "fold"
	StageNFC         = "nfc"
	StageJSONPath    = "jsonpath"
	StageScript      = "script"
	StageCommand     = "command"
	StageChain       = "chain"
	StageConditional = "conditional"
	StageRetry       = "retry"
)

const (
	backoffConstant    = "constant"
	backoffExponential = "exponential"
)

// ErrInvalidStage is wrapped by every Build failure
var ErrInvalidStage = errors.New("invalid stage")

var transforms = map[string]strategy.TransformFunc[string]{
	StageIdentity:  strategy.Identity[string],
	StageUppercase: strategy.Uppercase,
	StageLowercase: strategy.Lowercase,
	StageTrim:      strategy.TrimSpace,
	StageTitle:     strategy.Title,
	StageFold:      strategy.Fold,
	StageNFC:       strategy.NormalizeNFC,
}

// Build turns a stage tree into a strategy for string items.
// defaults supplies the retry ceiling and the script timeout.
func Build(stage config.StageConfig, defaults processor.Configuration, exec executor.Executor) (strategy.Strategy[string], error) {
	return build(stage, defaults, exec, "strategy")
}

func build(stage config.StageConfig, defaults processor.Configuration, exec executor.Executor, path string) (strategy.Strategy[string], error) {
	kind := strings.ToLower(stage.Type)

	if transform, ok := transforms[kind]; ok {
		vs, err := validators(stage, path)
		if err != nil {
			return nil, err
		}
		return strategy.New(transform, vs...), nil
	}

	switch kind {
	case StageJSONPath:
		if stage.Path == "" {
			return nil, fmt.Errorf("%w: %s: path is required", ErrInvalidStage, path)
		}
		transform, err := strategy.JSONPath(stage.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidStage, path, err)
		}
		vs, err := validators(stage, path)
		if err != nil {
			return nil, err
		}
		return strategy.New(transform, append([]strategy.Validator[string]{strategy.ValidJSON()}, vs...)...), nil

	case StageScript:
		s, err := strategy.NewScript(stage.Script, defaults.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidStage, path, err)
		}
		return s, nil

	case StageCommand:
		if stage.Command == "" {
			return nil, fmt.Errorf("%w: %s: command is required", ErrInvalidStage, path)
		}
		if exec == nil {
			exec = executor.New()
		}
		return strategy.NewCommand(exec, stage.Command, stage.Args...), nil

	case StageChain:
		if len(stage.Stages) == 0 {
			return nil, fmt.Errorf("%w: %s: chain needs at least one stage", ErrInvalidStage, path)
		}
		stages := make([]strategy.Strategy[string], 0, len(stage.Stages))
		for i, sub := range stage.Stages {
			s, err := build(sub, defaults, exec, fmt.Sprintf("%s.stages[%d]", path, i))
			if err != nil {
				return nil, err
			}
			stages = append(stages, s)
		}
		return strategy.NewComposite(stages...), nil

	case StageConditional:
		return buildConditional(stage, defaults, exec, path)

	case StageRetry:
		return buildRetry(stage, defaults, exec, path)
	}

	return nil, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidStage, path, stage.Type)
}

func buildConditional(stage config.StageConfig, defaults processor.Configuration, exec executor.Executor, path string) (strategy.Strategy[string], error) {
	if len(stage.Routes) == 0 && stage.Default == nil {
		return nil, fmt.Errorf("%w: %s: conditional needs routes or a default", ErrInvalidStage, path)
	}

	routes := make([]strategy.Route[string], 0, len(stage.Routes))
	for i, rc := range stage.Routes {
		routePath := fmt.Sprintf("%s.routes[%d]", path, i)

		when, err := predicate(rc, routePath)
		if err != nil {
			return nil, err
		}
		s, err := build(rc.Stage, defaults, exec, routePath+".stage")
		if err != nil {
			return nil, err
		}
		routes = append(routes, strategy.Route[string]{When: when, Strategy: s})
	}

	var fallback strategy.Strategy[string]
	if stage.Default != nil {
		s, err := build(*stage.Default, defaults, exec, path+".default")
		if err != nil {
			return nil, err
		}
		fallback = s
	}

	return strategy.NewConditional(routes, fallback), nil
}

func buildRetry(stage config.StageConfig, defaults processor.Configuration, exec executor.Executor, path string) (strategy.Strategy[string], error) {
	if stage.Stage == nil {
		return nil, fmt.Errorf("%w: %s: retry needs a stage", ErrInvalidStage, path)
	}
	base, err := build(*stage.Stage, defaults, exec, path+".stage")
	if err != nil {
		return nil, err
	}

	maxRetries := defaults.RetryCount
	if stage.MaxRetries != nil {
		maxRetries = *stage.MaxRetries
	}
	if maxRetries < 0 {
		return nil, fmt.Errorf("%w: %s: max_retries must not be negative", ErrInvalidStage, path)
	}

	var opts []strategy.RetryOption
	switch strings.ToLower(stage.Backoff) {
	case "", backoffConstant:
	case backoffExponential:
		opts = append(opts, strategy.WithExponentialBackOff(stage.Delay, stage.MaxDelay))
	default:
		return nil, fmt.Errorf("%w: %s: unknown backoff %q", ErrInvalidStage, path, stage.Backoff)
	}

	return strategy.NewRetry(base, maxRetries, stage.Delay, opts...), nil
}

func validators(stage config.StageConfig, path string) ([]strategy.Validator[string], error) {
	var vs []strategy.Validator[string]
	if stage.MinLength > 0 {
		vs = append(vs, strategy.MinLength(stage.MinLength))
	}
	if stage.MaxLength > 0 {
		vs = append(vs, strategy.MaxLength(stage.MaxLength))
	}
	if stage.Pattern != "" {
		re, err := regexp.Compile(stage.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: pattern: %v", ErrInvalidStage, path, err)
		}
		vs = append(vs, strategy.Matches(re))
	}
	if stage.Schema != "" {
		schema, err := strategy.CompileSchema(stage.Schema)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidStage, path, err)
		}
		vs = append(vs, strategy.MatchesSchema(schema))
	}
	return vs, nil
}

func predicate(rc config.RouteConfig, path string) (strategy.Predicate[string], error) {
	switch {
	case rc.Match != "":
		re, err := regexp.Compile(rc.Match)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: match: %v", ErrInvalidStage, path, err)
		}
		return re.MatchString, nil
	case rc.Prefix != "":
		prefix := rc.Prefix
		return func(item string) bool { return strings.HasPrefix(item, prefix) }, nil
	}
	return nil, fmt.Errorf("%w: %s: route needs match or prefix", ErrInvalidStage, path)
}

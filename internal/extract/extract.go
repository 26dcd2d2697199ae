// Package extract implements the static extraction engine: it parses a
// service-console source tree into normalized operation models by merging the
// CLI's operation registry with its per-option decorator metadata, then
// enriches each model from the operation's own script.
package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"robogen/internal/model"
	"robogen/internal/pysrc"
)

const (
	// registryName is the well-known entry-point assignment holding the
	// operation registry.
	registryName = "AVAILABLE_OPERATIONS"

	// consoleDir and entryFile form the conventional entry-point location.
	consoleDir = "service_console"
	entryFile  = "cli.py"

	// runFunction is the command whose decorators declare CLI options.
	runFunction = "run"
	// optionAttr is the decorator attribute that registers an option.
	optionAttr = "option"
	// longFlagPrefix marks an option's long flag name.
	longFlagPrefix = "--"

	// maxWalkDepth and maxWalkEntries bound the directory-wide fallback
	// search on pathological trees.
	maxWalkDepth   = 8
	maxWalkEntries = 10000
)

// entryCandidates are the conventional entry-point locations, tried in order
// before falling back to a bounded tree walk.
var entryCandidates = []string{
	consoleDir + "/" + entryFile,
	entryFile,
	"src/" + entryFile,
}

// Engine scans one source tree. It performs blocking filesystem reads and
// holds no mutable state across Scan calls beyond the re-anchored root.
type Engine struct {
	root string
	log  *zap.Logger
}

// New creates an engine rooted at dir. A nil logger disables diagnostics.
func New(dir string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{root: dir, log: log}
}

// Root returns the scan root, which may have been re-anchored by a fallback
// entry-point search during Scan.
func (e *Engine) Root() string { return e.root }

// Scan extracts all operations from the tree. A missing entry point yields an
// empty mapping and a diagnostic; only an unparsable entry-point file is an
// error, since no operations can be trusted without it. Failures local to one
// operation degrade that model's fields and never abort the scan.
func (e *Engine) Scan() (map[string]*model.OperationModel, error) {
	entryPath, ok := e.locateEntry()
	if !ok {
		e.log.Warn("entry point not found, nothing to scan",
			zap.String("root", e.root),
			zap.Strings("candidates", entryCandidates))
		return map[string]*model.OperationModel{}, nil
	}

	data, err := os.ReadFile(entryPath)
	if err != nil {
		e.log.Warn("entry point unreadable", zap.String("path", entryPath), zap.Error(err))
		return map[string]*model.OperationModel{}, nil
	}

	mod, err := pysrc.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("entry point %s: %w", entryPath, err)
	}

	ops := e.extractRegistry(mod)
	mergeOptions(ops, scanRunOptions(mod))

	for _, op := range ops {
		e.scanScript(op)
	}
	return ops, nil
}

// locateEntry resolves the entry-point file, re-anchoring the scan root when
// the console directory is found deeper in the tree.
func (e *Engine) locateEntry() (string, bool) {
	for _, rel := range entryCandidates {
		full := filepath.Join(e.root, filepath.FromSlash(rel))
		if fileExists(full) {
			return full, true
		}
	}

	// Bounded walk: look for a directory literally named after the console
	// package that contains the conventional entry file.
	var matches []string
	visited := 0
	_ = filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		visited++
		if visited > maxWalkEntries {
			return fs.SkipAll
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(e.root, path)
		if relErr == nil && strings.Count(filepath.ToSlash(rel), "/") >= maxWalkDepth {
			return fs.SkipDir
		}
		if d.Name() == consoleDir {
			candidate := filepath.Join(path, entryFile)
			if fileExists(candidate) {
				matches = append(matches, candidate)
			}
			return fs.SkipDir
		}
		return nil
	})

	if len(matches) == 0 {
		return "", false
	}

	// Shallowest match wins; ties break lexicographically for determinism.
	best := matches[0]
	for _, m := range matches[1:] {
		if depthOf(m) < depthOf(best) || (depthOf(m) == depthOf(best) && m < best) {
			best = m
		}
	}
	// Re-anchor one level above the console directory.
	e.root = filepath.Dir(filepath.Dir(best))
	e.log.Info("re-anchored scan root", zap.String("root", e.root))
	return best, true
}

// extractRegistry turns the registry assignment into operation models.
// The registry must be a literal dict; any other shape counts as "registry
// not found". Malformed entries are skipped, not errors.
func (e *Engine) extractRegistry(mod *pysrc.Module) map[string]*model.OperationModel {
	ops := map[string]*model.OperationModel{}

	assign := mod.Assignment(registryName)
	if assign == nil || assign.Value == nil || assign.Value.Kind != pysrc.KindDict {
		e.log.Warn("operation registry not found or not a literal dict",
			zap.String("registry", registryName))
		return ops
	}

	dict := assign.Value
	for i, key := range dict.Keys {
		name, isStr := key.StringLit()
		if !isStr {
			continue
		}
		op := &model.OperationModel{Name: name}

		if value := dict.Values[i]; value != nil && value.Kind == pysrc.KindDict {
			for j, k := range value.Keys {
				field, isStr := k.StringLit()
				if !isStr {
					continue
				}
				v := value.Values[j]
				switch field {
				case "description":
					if s, ok := v.StringLit(); ok {
						op.Description = s
					}
				case "script":
					if s, ok := v.StringLit(); ok {
						op.ScriptPath = s
					}
				case "args":
					if v != nil && v.Kind == pysrc.KindList {
						for _, elt := range v.Elts {
							if s, ok := elt.StringLit(); ok {
								op.Arguments = append(op.Arguments, model.OperationArgument{
									Name:     normalizeArgName(s),
									Required: true,
									Type:     model.TypeString,
								})
							}
						}
					}
				}
			}
		}
		ops[name] = op
	}
	return ops
}

// scanRunOptions walks the run command's decorators for option registrations.
// Options missing a recognizable long flag name are skipped.
func scanRunOptions(mod *pysrc.Module) []model.OperationArgument {
	var opts []model.OperationArgument
	for _, fn := range mod.Functions() {
		if fn.Ident != runFunction {
			continue
		}
		for _, dec := range fn.Decorators {
			if dec.Kind != pysrc.KindCall {
				continue
			}
			if attr, ok := dec.Func.AttrName(); !ok || attr != optionAttr {
				continue
			}

			var name string
			for _, arg := range dec.Args {
				if s, ok := arg.StringLit(); ok && strings.HasPrefix(s, longFlagPrefix) {
					name = normalizeArgName(s)
					break
				}
			}
			if name == "" {
				continue
			}

			opt := model.OperationArgument{Name: name, Required: false, Type: model.TypeString}
			for _, kw := range dec.Keywords {
				switch kw.Name {
				case "help":
					if s, ok := kw.Value.StringLit(); ok {
						opt.Description = s
					}
				case "default":
					if text, ok := kw.Value.LiteralText(); ok && text != "None" {
						opt.Default = text
					}
				case "is_flag":
					if text, ok := kw.Value.LiteralText(); ok && text == "True" {
						opt.Type = model.TypeFlag
					}
				case "type":
					if attr, ok := kw.Value.AttrName(); ok {
						opt.Type = normalizeType(attr)
					}
				}
			}
			opts = append(opts, opt)
		}
	}
	return opts
}

// mergeOptions enriches registry-declared arguments with option metadata.
// The registry is authoritative for presence and required-ness; the option
// scan only overwrites type, default, and description. Unmatched option
// records are deliberately discarded.
func mergeOptions(ops map[string]*model.OperationModel, opts []model.OperationArgument) {
	if len(opts) == 0 {
		return
	}
	byName := make(map[string]model.OperationArgument, len(opts))
	for _, o := range opts {
		if _, seen := byName[o.Name]; !seen {
			byName[o.Name] = o
		}
	}
	for _, op := range ops {
		for i, arg := range op.Arguments {
			o, ok := byName[arg.Name]
			if !ok {
				continue
			}
			op.Arguments[i].Type = o.Type
			op.Arguments[i].Default = o.Default
			op.Arguments[i].Description = o.Description
		}
	}
}

// normalizeArgName strips the flag prefix and folds hyphens to underscores.
func normalizeArgName(flag string) string {
	return strings.ReplaceAll(strings.TrimLeft(flag, "-"), "-", "_")
}

// normalizeType folds decorator type references into the model's tag set.
// Unrecognized tags are kept verbatim, lowercased: the set is open.
func normalizeType(raw string) string {
	switch strings.ToLower(raw) {
	case "int", "integer":
		return model.TypeInteger
	case "str", "string", "text":
		return model.TypeString
	case "path", "file":
		return model.TypePath
	case "bool":
		return model.TypeFlag
	default:
		return strings.ToLower(raw)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func depthOf(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

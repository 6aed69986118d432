package schema

// CategoryDef is one rubric category as configured, before regex
// compilation. Compiled rubrics live in core/scoring.
type CategoryDef struct {
	Weight   float64  // Points granted per pattern hit
	Patterns []string // Regex patterns matched against lowercased subjects
}

// DefaultCategories returns the built-in capability rubric.
// Weights reflect how much a category advances the capability curve,
// so self-referential work outranks plumbing.
func DefaultCategories() map[string]CategoryDef {
	return map[string]CategoryDef{
		"foundation": {
			Weight: 1,
			Patterns: []string{
				`initial commit`, `setup`, `scaffold`, `boilerplate`,
				`package\.json`, `tsconfig`, `eslint`, `prettier`,
				`basic.*structure`, `foundation`, `directory structure`,
			},
		},
		"elements": {
			Weight: 2,
			Patterns: []string{
				`persona`, `skill`, `template`, `memory`, `element type`,
				`element.*system`, `crud`, `create.*element`, `edit.*element`,
				`delete.*element`, `list.*element`, `get.*element`,
				`element.*manager`, `element.*handler`, `element.*storage`,
				`element.*validator`, `element.*loader`,
			},
		},
		"agents": {
			Weight: 3,
			Patterns: []string{
				`agent`, `execute`, `execution`, `autonomy`, `autonomous`,
				`agentic`, `goal`, `objective`, `step`, `execution.*state`,
				`execution.*lifecycle`, `complete.*execution`, `continue.*execution`,
				`update.*execution`, `agent.*loop`, `budget`,
			},
		},
		"self_modify": {
			Weight: 5,
			Patterns: []string{
				`self.?modif`, `self.?improv`, `self.?evolv`, `self.?updat`,
				`dynamic.*creat`, `runtime.*creat`, `programmatic.*creat`,
				`auto.?generat`, `element.*creat.*element`, `meta.?element`,
				`create.*from.*template`, `derive`, `compose`,
				`addentry`, `add.*entry`, `append.*memory`,
				`evolv`, `adapt`, `learn`,
			},
		},
		"meta": {
			Weight: 5,
			Patterns: []string{
				`introspect`, `relationship`, `find.*similar`, `search.*by.*verb`,
				`relationship.*stats`, `element.*relationship`, `dependency`,
				`self.?aware`, `meta.?cogni`, `reflect`, `reason.*about`,
				`ensemble`, `compose`, `orchestrat`,
				`active.*element`, `render`, `context.*build`,
			},
		},
		"ecosystem": {
			Weight: 3,
			Patterns: []string{
				`collection`, `portfolio`, `install`, `import`,
				`marketplace`, `catalog`, `browse`, `search.*collection`,
				`submit`, `publish`, `share`, `github.*auth`,
				`sync.*portfolio`, `portfolio.*element`,
			},
		},
		"safety": {
			Weight: 2,
			Patterns: []string{
				`safety`, `trust`, `operator`, `security`, `permission`,
				`validation`, `sanitiz`, `escape`, `guard`, `tier`,
				`safety.*tier`, `operator.*safety`, `secure`,
			},
		},
		"integration": {
			Weight: 2,
			Patterns: []string{
				`ide`, `studio`, `electron`, `bridge`,
				`api.*endpoint`, `rest.*api`, `websocket`, `stream`,
				`external`, `connect`, `oauth`, `zulip`,
				`ci.?cd`, `deploy`, `docker`,
			},
		},
		"aql": {
			Weight: 4,
			Patterns: []string{
				`aql`, `query.*language`, `query.*element`, `search.*element`,
				`filter`, `narrow`, `resolver`, `disambigu`,
				`mcp.*tool`, `tool.*registr`, `tool.*handler`,
				`crude`, `operation.*dispatch`,
			},
		},
	}
}

// DefaultHighLevelCategories are the categories whose share of
// capability drives the sophistication ratio upward.
func DefaultHighLevelCategories() map[string]struct{} {
	return map[string]struct{}{
		"agents":      {},
		"self_modify": {},
		"meta":        {},
		"aql":         {},
	}
}

// DefaultLowLevelCategories are the plumbing categories. Tracked for
// reporting symmetry with the high-level set.
func DefaultLowLevelCategories() map[string]struct{} {
	return map[string]struct{}{
		"foundation":  {},
		"elements":    {},
		"integration": {},
	}
}

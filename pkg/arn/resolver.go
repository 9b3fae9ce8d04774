package arn

// Result is a resolved ARN together with the resource identifier
// placeholders that had no value and were replaced by the wildcard.
type Result struct {
	ARN     string
	Missing []string
}

func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

type Resolver struct {
	ctx Context
}

// NewResolver returns a resolver that falls back to ctx for partition,
// region and account. Empty fields of ctx take the documented defaults.
func NewResolver(ctx Context) *Resolver {
	return &Resolver{ctx: ctx.WithDefaults()}
}

func (r *Resolver) Context() Context {
	return r.ctx
}

// Resolve substitutes every ${Placeholder} in template. Caller values win,
// then the resolver context for Partition, Region and Account. Anything
// else left without a value becomes "*" and is listed in Result.Missing.
func (r *Resolver) Resolve(template string, values map[string]string) Result {
	var missing []string
	seen := make(map[string]bool)

	resolved := placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-1]
		if v := values[name]; v != "" {
			return v
		}
		switch name {
		case PlaceholderPartition:
			return r.ctx.Partition
		case PlaceholderRegion:
			return r.ctx.Region
		case PlaceholderAccount:
			return r.ctx.Account
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return Wildcard
	})

	return Result{ARN: resolved, Missing: missing}
}

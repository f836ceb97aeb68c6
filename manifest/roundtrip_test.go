package manifest

import (
	"testing"

	"pgregory.net/rapid"
)

// scalars that YAML would read as something other than a string if written
// bare, mixed with ordinary words.
var trickyScalars = []string{
	"", "yes", "no", "on", "off", "true", "null", "~", "3.10", "1e3", "0x1F",
	"-", "- x", "#x", "a: b", "'q'", "\"dq\"", " padded ", "line\nbreak", "*alias", "&anchor",
	"[x]", "{x}", "%x", "@x", "`x`", "tab\tin",
}

func genScalar() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.SampledFrom(trickyScalars),
		rapid.StringMatching(`[a-zA-Z0-9._/:=-]{1,16}`),
	)
}

func genStrings() *rapid.Generator[[]string] {
	return rapid.SliceOfN(genScalar(), 0, 4)
}

// genExtras draws unmodeled keys. The x_ prefix keeps them clear of real keys.
func genExtras(t *rapid.T, label string) map[string]interface{} {
	drawn := rapid.MapOfN(rapid.StringMatching(`x_[a-z]{1,6}`), genScalar(), 0, 2).Draw(t, label)
	if len(drawn) == 0 {
		return nil
	}
	extra := make(map[string]interface{}, len(drawn))
	for k, v := range drawn {
		extra[k] = v
	}
	return extra
}

func genHook() *rapid.Generator[Hook] {
	return rapid.Custom(func(t *rapid.T) Hook {
		return Hook{
			ID:                      genScalar().Draw(t, "id"),
			Alias:                   genScalar().Draw(t, "alias"),
			Name:                    genScalar().Draw(t, "name"),
			Entry:                   genScalar().Draw(t, "entry"),
			Language:                genScalar().Draw(t, "language"),
			Files:                   genScalar().Draw(t, "files"),
			Exclude:                 genScalar().Draw(t, "exclude"),
			Types:                   genStrings().Draw(t, "types"),
			Args:                    genStrings().Draw(t, "args"),
			Stages:                  genStrings().Draw(t, "stages"),
			AdditionalDependencies:  genStrings().Draw(t, "deps"),
			AlwaysRun:               rapid.Ptr(rapid.Bool(), true).Draw(t, "always_run"),
			PassFilenames:           rapid.Ptr(rapid.Bool(), true).Draw(t, "pass_filenames"),
			RequireSerial:           rapid.Bool().Draw(t, "require_serial"),
			LogFile:                 genScalar().Draw(t, "log_file"),
			MinimumPreCommitVersion: genScalar().Draw(t, "hook_min_version"),
			Extra:                   genExtras(t, "hook_extra"),
		}
	})
}

func genManifest() *rapid.Generator[*Manifest] {
	return rapid.Custom(func(t *rapid.T) *Manifest {
		m := &Manifest{
			DefaultLanguageVersion: rapid.MapOfN(genScalar(), genScalar(), 0, 3).Draw(t, "dlv"),
			DefaultStages:          genStrings().Draw(t, "default_stages"),
			Files:                  genScalar().Draw(t, "files"),
			Exclude:                genScalar().Draw(t, "exclude"),
			FailFast:               rapid.Bool().Draw(t, "fail_fast"),
		}

		if rapid.Bool().Draw(t, "has_ci") {
			skip := genStrings().Draw(t, "ci_skip")
			values := make([]interface{}, len(skip))
			for i, s := range skip {
				values[i] = s
			}
			m.CI = map[string]interface{}{
				"autofix_prs": rapid.Bool().Draw(t, "ci_autofix"),
				"skip":        values,
			}
		}

		m.Extra = genExtras(t, "extra")

		repoCount := rapid.IntRange(0, 4).Draw(t, "repos")
		for i := 0; i < repoCount; i++ {
			m.Repos = append(m.Repos, Repo{
				URL:   genScalar().Draw(t, "repo"),
				Rev:   genScalar().Draw(t, "rev"),
				Hooks: rapid.SliceOfN(genHook(), 0, 3).Draw(t, "hooks"),
				Extra: genExtras(t, "repo_extra"),
			})
		}
		return m
	})
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := genManifest().Draw(t, "manifest")

		data, err := Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		back, err := Parse(data)
		if err != nil {
			t.Fatalf("parse of marshaled manifest failed: %v\n%s", err, data)
		}

		if !Equal(m, back) {
			t.Fatalf("record set changed across round trip:\n%s", data)
		}

		again, err := Marshal(back)
		if err != nil {
			t.Fatalf("second marshal: %v", err)
		}
		if string(again) != string(data) {
			t.Fatalf("canonical form not stable:\n%s\n---\n%s", data, again)
		}
	})
}

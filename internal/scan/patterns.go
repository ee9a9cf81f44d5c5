package scan

import (
	"strings"

	"github.com/shaniidev/jshunt/internal/core"
)

// Marker keys of an Amplify / Cognito client configuration
var cognitoMarkers = []string{
	"aws_cognito_identity_pool_id",
	"aws_user_pools_web_client_id",
	"aws_user_pools_id",
	"aws_cognito_region",
	"identityPoolId",
	"userPoolWebClientId",
	"userPoolId",
}

var tugboatKeywords = []string{"authentication:", "access_token:", "ssh_user:"}

const awsRegion = `(?:us|eu|ap|sa|ca|me|af|il|mx|cn)-(?:gov-)?(?:northeast|southeast|northwest|southwest|north|south|east|west|central)-\d`

var (
	cognitoConfigRe = mustCompile(`(?:` + strings.Join(cognitoMarkers, "|") + `)["']?[ \t]*[:=][ \t]*["'][^"'\r\n]+["']`)
	cognitoPoolRe   = mustCompile(awsRegion + `:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	cognitoLooseRe  = mustCompile(`[a-z]{2}-(?:gov-)?[a-z]+-\d[:_][0-9A-Za-z-]{8,}`)
	razorpayRe      = mustCompile(`rzp_(?:live|test)_[0-9A-Za-z]{14}`)
	mapboxRe        = mustCompile(`sk\.eyJ1Ijoi[0-9A-Za-z_-]+\.[0-9A-Za-z_-]{20,}`)
	fcmRe           = mustCompile(`AAAA[0-9A-Za-z_-]{7}:[0-9A-Za-z_-]{140}`)
	doKeyRe         = mustCompile(`"do_key"[ \t]*:[ \t]*"[^"\r\n]*"`)
	tugboatTokenRe  = mustCompile(`access_token:[ \t]*["']?[0-9A-Za-z_.-]+`)
)

// BuiltinScanners returns the built-in rules in a fixed order
func BuiltinScanners() []*Scanner {
	return []*Scanner{
		{
			Name:     "AWSCognitoMisconfiguration",
			Severity: core.SeverityHigh,
			Keywords: cognitoMarkers,
			match:    matchCognitoConfig,
		},
		{
			Name:     "AWSCognitoPoolID",
			Severity: core.SeverityHigh,
			match:    matchCognitoPool,
		},
		{
			Name:     "PossibleAWSCognitoPoolID",
			Severity: core.SeverityMedium,
			match:    matchCognitoPoolLoose,
		},
		{
			Name:     "RazorpayClientID",
			Severity: core.SeverityHigh,
			Keywords: []string{"rzp_live_", "rzp_test_"},
			match:    matchRazorpay,
		},
		{
			Name:     "MapboxToken",
			Severity: core.SeverityMedium,
			Keywords: []string{"sk.eyJ1Ijoi"},
			match:    simpleMatch(mapboxRe, "token"),
		},
		{
			Name:     "FCMServerKey",
			Severity: core.SeverityHigh,
			Keywords: []string{"AAAA"},
			match:    simpleMatch(fcmRe, "server_key"),
		},
		{
			Name:     "DigitalOceanKey",
			Severity: core.SeverityCritical,
			Keywords: []string{`"do_key"`},
			match:    matchDOKey,
		},
		{
			Name:       "TugboatConfig",
			Severity:   core.SeverityCritical,
			Keywords:   tugboatKeywords,
			RequireAll: true,
			match:      matchTugboat,
		},
	}
}

func simpleMatch(p *CompiledPattern, field string) func([]byte) []map[string]any {
	return func(content []byte) []map[string]any {
		var out []map[string]any
		for _, m := range p.FindAll(content) {
			out = append(out, map[string]any{field: m, "matched_string": m})
		}
		return out
	}
}

func matchCognitoConfig(content []byte) []map[string]any {
	var out []map[string]any
	for _, m := range cognitoConfigRe.FindAll(content) {
		key, value := splitAssignment(m)
		out = append(out, map[string]any{
			"key":            key,
			"value":          value,
			"matched_string": m,
		})
	}
	return out
}

// splitAssignment splits `key" : 'value'` into its key and unquoted value
func splitAssignment(m string) (string, string) {
	end := strings.IndexAny(m, "\"':= \t")
	if end < 0 {
		return m, ""
	}
	key := m[:end]
	rest := m[end:]
	sep := strings.IndexAny(rest, ":=")
	if sep < 0 {
		return key, ""
	}
	rest = strings.TrimLeft(rest[sep+1:], " \t")
	if len(rest) < 2 {
		return key, ""
	}
	return key, rest[1 : len(rest)-1]
}

func poolData(m string) map[string]any {
	region := m
	if i := strings.IndexAny(m, ":_"); i >= 0 {
		region = m[:i]
	}
	return map[string]any{"pool_id": m, "region": region, "matched_string": m}
}

func matchCognitoPool(content []byte) []map[string]any {
	var out []map[string]any
	for _, m := range cognitoPoolRe.FindAll(content) {
		out = append(out, poolData(m))
	}
	return out
}

// matchCognitoPoolLoose reports region-prefixed tokens the strict pattern
// did not already capture.
func matchCognitoPoolLoose(content []byte) []map[string]any {
	strict := cognitoPoolRe.FindAll(content)

	var out []map[string]any
	for _, m := range cognitoLooseRe.FindAll(content) {
		captured := false
		for _, s := range strict {
			if strings.Contains(m, s) || strings.Contains(s, m) {
				captured = true
				break
			}
		}
		if !captured {
			out = append(out, poolData(m))
		}
	}
	return out
}

func matchRazorpay(content []byte) []map[string]any {
	var out []map[string]any
	for _, m := range razorpayRe.FindAll(content) {
		mode := "test"
		if strings.HasPrefix(m, "rzp_live_") {
			mode = "live"
		}
		out = append(out, map[string]any{"key_id": m, "mode": mode, "matched_string": m})
	}
	return out
}

func matchDOKey(content []byte) []map[string]any {
	var out []map[string]any
	for _, m := range doKeyRe.FindAll(content) {
		_, value := splitAssignment(strings.TrimPrefix(m, `"`))
		out = append(out, map[string]any{"do_key": value, "matched_string": m})
	}
	return out
}

func matchTugboat(content []byte) []map[string]any {
	var out []map[string]any
	for _, m := range tugboatTokenRe.FindAll(content) {
		token := strings.TrimSpace(strings.TrimPrefix(m, "access_token:"))
		token = strings.Trim(token, `"'`)
		out = append(out, map[string]any{"access_token": token, "matched_string": m})
	}
	return out
}

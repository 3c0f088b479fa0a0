package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printKV(w io.Writer, rows [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	_ = tw.Flush()
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "no results")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// statusOutput is the status command's report.
type statusOutput struct {
	State     string     `json:"state"`
	Storage   string     `json:"storage"`
	Stored    bool       `json:"credential_stored"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired,omitempty"`
}

func newStatusOutput(state model.SessionState, info model.CredentialInfo, storage string) statusOutput {
	out := statusOutput{
		State:   state.String(),
		Storage: storage,
		Stored:  info.Present,
		Subject: info.Subject,
	}
	if !info.ExpiresAt.IsZero() {
		exp := info.ExpiresAt
		out.ExpiresAt = &exp
		out.Expired = info.Expired(time.Now())
	}
	return out
}

func printStatus(w io.Writer, st statusOutput) {
	expires := "-"
	if st.ExpiresAt != nil {
		expires = st.ExpiresAt.Local().Format(timeLayout)
		if st.Expired {
			expires += " (expired)"
		}
	}
	printKV(w, [][2]string{
		{"state", st.State},
		{"storage", st.Storage},
		{"credential", fmt.Sprintf("%t", st.Stored)},
		{"subject", orDash(st.Subject)},
		{"expires", expires},
	})
}

// listOutput is the JSON form of one listed page.
type listOutput struct {
	Items      []model.ActionItem `json:"items"`
	TotalCount int                `json:"total_count"`
	PageNumber int                `json:"page_number"`
	PageSize   int                `json:"page_size"`
	SearchTerm string             `json:"search,omitempty"`
}

func newListOutput(snap application.ListSnapshot) listOutput {
	return listOutput{
		Items:      snap.Result.Items,
		TotalCount: snap.Result.TotalCount,
		PageNumber: snap.Query.PageNumber,
		PageSize:   snap.Query.PageSize,
		SearchTerm: snap.Query.SearchTerm,
	}
}

func printActions(w io.Writer, snap application.ListSnapshot) {
	rows := make([][]string, 0, len(snap.Result.Items))
	for _, item := range snap.Result.Items {
		created := item.CreatedAt
		if t, ok := item.CreatedTime(); ok {
			created = t.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			item.ID,
			item.Name,
			item.Status.Label(),
			orDash(created),
			orDash(item.Color),
		})
	}
	printTable(w, []string{"ID", "NAME", "STATUS", "CREATED", "COLOR"}, rows)

	from, to := snap.Result.Range(snap.Query)
	_, _ = fmt.Fprintf(w, "%d - %d of %d (page %d, %d per page)\n",
		from, to, snap.Result.TotalCount, snap.Query.PageNumber, snap.Query.PageSize)
}

func printValidationErrors(w io.Writer, errs model.ValidationErrors) {
	rows := make([][2]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, [2]string{e.Field, e.Msg})
	}
	printKV(w, rows)
}

package cli

import (
	"context"
	"errors"
	"fmt"
)

func (a *App) Reports(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return errors.New("login first")
	}
	reports, err := a.queue.Reports(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(a.out, "No reports yet")
		return nil
	}
	for _, r := range reports {
		class := r.ClassName()
		if class == "" {
			class = "-"
		}
		fmt.Fprintf(a.out, "#%-5d %s  %-8s %-16s %s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, class, r.Filename)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errNoSuchItem = errors.New("no such item")

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add <path> [name]")
	}
	u, err := a.queue.Add(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %q (%s)\n", u.DisplayName, u.Kind)
	return nil
}

func (a *App) List(ctx context.Context, _ []string) error {
	items, err := a.queue.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nothing to send")
		return nil
	}
	for i, it := range items {
		fmt.Fprintf(a.out, "%3d. %-24s %-5s %s\n", i+1, it.DisplayName, it.Kind, it.SourceURI)
	}
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: rename <n> <name>")
	}
	id, err := a.itemID(ctx, args[0])
	if err != nil {
		return err
	}
	return a.queue.Rename(ctx, id, strings.Join(args[1:], " "))
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <n>")
	}
	id, err := a.itemID(ctx, args[0])
	if err != nil {
		return err
	}
	return a.queue.Delete(ctx, id)
}

func (a *App) Clear(ctx context.Context, _ []string) error {
	return a.queue.Clear(ctx)
}

// itemID maps a 1-based list position to the item ID.
func (a *App) itemID(ctx context.Context, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "", fmt.Errorf("%q is not a number", arg)
	}
	items, err := a.queue.List(ctx)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(items) {
		return "", fmt.Errorf("%w: %d", errNoSuchItem, n)
	}
	return items[n-1].ID, nil
}

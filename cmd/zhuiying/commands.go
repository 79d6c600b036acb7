package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/zhuiying-client/internal/locale"
	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":        {"login", "log in and load the profile", cmdLogin},
		"logout":       {"logout", "end the session and clear local data", cmdLogout},
		"me":           {"me", "show the profile and counters", cmdMe},
		"rename":       {"rename <nickname>", "change the nickname", cmdRename},
		"list":         {"list [-status active|stopped] [-platform weibo|xiaohongshu]", "list trackers", cmdList},
		"parse":        {"parse <url>", "check a share link", cmdParse},
		"add":          {"add [-frequency minutes] <url>", "create a tracker (costs coins)", cmdAdd},
		"update":       {"update -frequency minutes <id>", "change the polling interval", cmdUpdate},
		"start":        {"start <id>", "resume a tracker", idCommand(func(ctx context.Context, a *app, id string) error { return a.tc.StartTracking(ctx, id) })},
		"stop":         {"stop <id>", "pause a tracker", idCommand(func(ctx context.Context, a *app, id string) error { return a.tc.StopTracking(ctx, id) })},
		"delete":       {"delete <id>", "delete a tracker", idCommand(func(ctx context.Context, a *app, id string) error { return a.tc.RemoveTracker(ctx, id) })},
		"batch-start":  {"batch-start <id>...", "resume several trackers", idsCommand(func(ctx context.Context, a *app, ids []string) error { return a.tc.BatchStart(ctx, ids) })},
		"batch-stop":   {"batch-stop <id>...", "pause several trackers", idsCommand(func(ctx context.Context, a *app, ids []string) error { return a.tc.BatchStop(ctx, ids) })},
		"batch-delete": {"batch-delete <id>...", "delete several trackers", idsCommand(func(ctx context.Context, a *app, ids []string) error { return a.tc.BatchRemove(ctx, ids) })},
		"status":       {"status <id>", "show when a tracker was and will be checked", cmdStatus},
		"coins":        {"coins [-n count]", "show the balance and recent transactions", cmdCoins},
		"watch-ad":     {"watch-ad", "watch a rewarded ad for coins", cmdWatchAd},
		"push-limit":   {"push-limit", "show today's notification quota", cmdPushLimit},
		"subscribe":    {"subscribe <template-id>...", "allow notification templates", cmdSubscribe},
		"frequencies":  {"frequencies", "list the selectable polling intervals", cmdFrequencies},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: zhuiying [flags] <command> [args]")
	fmt.Fprintln(w, "       zhuiying shell")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", commands[name].usage, commands[name].help)
	}
	tw.Flush()
}

func dispatch(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		printUsage(a.out)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(ctx, a, args[1:])
}

// shell reads one command per line until EOF or "exit"
func shell(ctx context.Context, a *app, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(a.out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		case "help":
			printUsage(a.out)
		default:
			if err := dispatch(ctx, a, strings.Fields(line)); err != nil {
				fmt.Fprintf(a.out, "error: %v\n", err)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(a.out, "> ")
	}
	return scanner.Err()
}

// ensureSession logs in when no user is loaded
func ensureSession(ctx context.Context, a *app) error {
	if err := a.uc.Init(ctx); err != nil {
		return err
	}
	if a.users.IsLoggedIn() {
		return nil
	}
	_, err := a.uc.Login(ctx)
	return err
}

func idCommand(fn func(ctx context.Context, a *app, id string) error) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected one tracker id")
		}
		if err := ensureSession(ctx, a); err != nil {
			return err
		}
		return fn(ctx, a, args[0])
	}
}

func idsCommand(fn func(ctx context.Context, a *app, ids []string) error) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("expected at least one tracker id")
		}
		if err := ensureSession(ctx, a); err != nil {
			return err
		}
		return fn(ctx, a, args)
	}
}

func cmdLogin(ctx context.Context, a *app, _ []string) error {
	if _, err := a.uc.Login(ctx); err != nil {
		return err
	}
	return cmdMe(ctx, a, nil)
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	return a.uc.Logout(ctx)
}

func cmdMe(ctx context.Context, a *app, _ []string) error {
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	if err := a.uc.LoadUserInfo(ctx); err != nil {
		return err
	}
	if err := a.uc.LoadAdReward(ctx); err != nil {
		return err
	}
	u := a.users.State().UserInfo
	stats := a.uc.Stats()
	if u == nil || stats == nil {
		return fmt.Errorf("not logged in")
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "nickname\t%s\n", u.Nickname)
	fmt.Fprintf(tw, "coins\t%s\n", locale.FormatNumber(stats.Coins))
	fmt.Fprintf(tw, "trackers\t%d (%d active)\n", stats.TotalTrackers, stats.ActiveTrackers)
	fmt.Fprintf(tw, "ad reward\t%v\n", stats.CanWatchAd)
	return tw.Flush()
}

func cmdRename(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected a nickname")
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	nick := strings.Join(args, " ")
	_, err := a.uc.UpdateUser(ctx, models.UserPatch{Nickname: &nick})
	return err
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.out)
	status := fs.String("status", "", "filter by status")
	platform := fs.String("platform", "", "filter by platform")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	if err := a.tc.LoadTrackers(ctx); err != nil {
		return err
	}

	var list []models.Tracker
	switch {
	case *platform != "":
		list = a.trackers.TrackersByPlatform(types.Platform(*platform))
	case *status == string(types.StatusActive):
		list = a.trackers.ActiveTrackers()
	case *status == string(types.StatusStopped):
		list = a.trackers.StoppedTrackers()
	default:
		list = a.trackers.State().List
	}
	if *platform != "" && *status != "" {
		filtered := list[:0]
		for _, t := range list {
			if string(t.Status) == *status {
				filtered = append(filtered, t)
			}
		}
		list = filtered
	}

	printTrackers(a.out, list, time.Now())
	stats := a.tc.Stats()
	fmt.Fprintf(a.out, "%d total, %d active, %d stopped\n", stats.Total, stats.Active, stats.Stopped)
	return nil
}

func printTrackers(w io.Writer, list []models.Tracker, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tSTATUS\tFREQUENCY\tCREATED")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Platform, t.Status,
			locale.FrequencyLabel(t.Frequency), locale.FormatTime(t.CreatedAt, now))
	}
	tw.Flush()
}

func cmdParse(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected a url")
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	res, err := a.tc.ParseURL(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n", res.Title, res.Platform)
	return nil
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	freq := fs.Int("frequency", 0, "minutes between checks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected a url")
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}

	link := fs.Arg(0)
	if _, err := a.tc.ParseURL(ctx, link); err != nil {
		return err
	}
	req := models.CreateTrackerRequest{URL: link}
	if *freq > 0 {
		req.Frequency = freq
	}
	t, err := a.tc.AddTracker(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s, %s left\n", t.ID, t.Title, locale.FormatNumber(a.users.UserCoins()))
	return nil
}

func cmdUpdate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(a.out)
	freq := fs.Int("frequency", 0, "minutes between checks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *freq <= 0 {
		return fmt.Errorf("expected -frequency and a tracker id")
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	_, err := a.tc.UpdateTracker(ctx, models.UpdateTrackerRequest{ID: fs.Arg(0), Frequency: freq})
	return err
}

func cmdStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one tracker id")
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	res, err := a.tc.RefreshStatus(ctx, args[0])
	if err != nil {
		return err
	}
	now := time.Now()
	fmt.Fprintf(a.out, "%s, last checked %s, next check %s\n",
		res.Status, locale.FormatTime(res.LastChecked, now), res.NextCheck.Local().Format("2006-01-02 15:04"))
	return nil
}

func cmdCoins(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("coins", flag.ContinueOnError)
	fs.SetOutput(a.out)
	n := fs.Int("n", 0, "number of transactions to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	if err := a.uc.LoadCoinTransactions(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "balance: %s\n", locale.FormatNumber(a.users.UserCoins()))
	now := time.Now()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, tx := range a.users.RecentTransactions(*n) {
		sign := "+"
		if tx.Type == types.TransactionSpend {
			sign = "-"
		}
		fmt.Fprintf(tw, "%s%d\t%s\t%s\n", sign, tx.Amount, tx.Reason, locale.FormatTime(tx.CreatedAt, now))
	}
	return tw.Flush()
}

func cmdWatchAd(ctx context.Context, a *app, _ []string) error {
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	if err := a.uc.LoadAdReward(ctx); err != nil {
		return err
	}
	if !a.users.CanWatchAd() {
		if r := a.users.State().AdReward; r != nil && r.NextAvailableTime != nil {
			return fmt.Errorf("ad reward available again at %s", r.NextAvailableTime.Local().Format("15:04"))
		}
		return fmt.Errorf("ad reward unavailable")
	}
	fmt.Fprintln(a.out, "playing ad...")
	res, err := a.uc.WatchAd(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "+%d, balance: %s\n", res.Coins, locale.FormatNumber(a.users.UserCoins()))
	return nil
}

func cmdPushLimit(ctx context.Context, a *app, _ []string) error {
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	if err := a.uc.LoadPushLimit(ctx); err != nil {
		return err
	}
	l := a.users.State().PushLimit
	if l == nil {
		return fmt.Errorf("push limit unavailable")
	}
	fmt.Fprintf(a.out, "%d/%d, resets %s\n", l.CurrentCount, l.DailyLimit, l.ResetTime.Local().Format("2006-01-02 15:04"))
	return nil
}

func cmdSubscribe(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected at least one template id")
	}
	if err := ensureSession(ctx, a); err != nil {
		return err
	}
	res, err := a.uc.RequestSubscription(ctx, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "accepted: %s\n", strings.Join(res.AcceptedTemplates, ", "))
	return nil
}

func cmdFrequencies(_ context.Context, a *app, _ []string) error {
	for _, o := range locale.FrequencyOptions() {
		fmt.Fprintf(a.out, "%5s  %s\n", strconv.Itoa(o.Minutes), o.Label)
	}
	return nil
}

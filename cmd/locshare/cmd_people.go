package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"locshare/internal/decode"
	"locshare/internal/domain"
	"locshare/internal/locator"
	"locshare/pkg/coord"
)

var (
	whoisNickname string
	whoisFullName string
)

// peopleCmd lists everyone sharing with the session
var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List everyone sharing their location",
	Args:  cobra.NoArgs,
	RunE:  runPeople,
}

// selfCmd prints the authenticated account's own position
var selfCmd = &cobra.Command{
	Use:   "self",
	Short: "Show the signed-in account's own position",
	Args:  cobra.NoArgs,
	RunE:  runSelf,
}

// whoisCmd looks up one person by name
var whoisCmd = &cobra.Command{
	Use:   "whois",
	Short: "Show one person by nickname or full name",
	Example: `  locshare whois --nickname Ada
  locshare whois --fullname "Grace Hopper"`,
	Args: cobra.NoArgs,
	RunE: runWhois,
}

// checkCmd verifies that the session cookies are still accepted
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the session is still authenticated",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func runPeople(cmd *cobra.Command, args []string) error {
	b, err := bootstrap()
	if err != nil {
		return err
	}
	res, err := b.Locator().Refresh(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res, jsonOutput)
}

func runSelf(cmd *cobra.Command, args []string) error {
	b, err := bootstrap()
	if err != nil {
		return err
	}
	self, err := b.Locator().AuthenticatedPerson(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), self)
	}
	return printPositions(cmd.OutOrStdout(), nil, &self, nil)
}

func runWhois(cmd *cobra.Command, args []string) error {
	b, err := bootstrap()
	if err != nil {
		return err
	}
	return whois(cmd, b.Locator())
}

func whois(cmd *cobra.Command, loc *locator.Locator) error {
	var (
		rec domain.SharedRecord
		err error
	)
	if whoisNickname != "" {
		rec, err = loc.PersonByNickname(cmd.Context(), whoisNickname)
	} else {
		rec, err = loc.PersonByFullName(cmd.Context(), whoisFullName)
	}
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rec)
	}
	return printPositions(cmd.OutOrStdout(), []domain.SharedRecord{rec}, nil, nil)
}

func runCheck(cmd *cobra.Command, args []string) error {
	b, err := bootstrap()
	if err != nil {
		return err
	}
	if err := b.Locator().CheckSession(cmd.Context()); err != nil {
		return fmt.Errorf("session check failed (%s): %w", locator.ErrorKind(err), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Session is authenticated")
	return nil
}

func printResult(w io.Writer, res decode.Result, asJSON bool) error {
	if asJSON {
		return writeJSON(w, res)
	}
	var origin *coord.Point
	if res.Self != nil {
		if p, err := res.Self.Point(); err == nil {
			origin = &p
		}
	}
	return printPositions(w, res.Shared, res.Self, origin)
}

// printPositions renders a table; with origin set, a distance column is added.
func printPositions(w io.Writer, shared []domain.SharedRecord, self *domain.SelfRecord, origin *coord.Point) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := "NAME\tNICKNAME\tPOSITION\tACCURACY\tSEEN\tBATTERY\tCHARGING"
	if origin != nil {
		header += "\tDISTANCE"
	}
	fmt.Fprintln(tw, header)

	if self != nil {
		fmt.Fprintf(tw, "(you)\t-\t%s,%s\t%s\t%s\t-\t-", self.Latitude, self.Longitude,
			orDash(self.Accuracy), self.Timestamp.Format(time.DateTime))
		if origin != nil {
			fmt.Fprint(tw, "\t-")
		}
		fmt.Fprintln(tw)
	}

	for _, p := range shared {
		fmt.Fprintf(tw, "%s\t%s\t%s,%s\t%s\t%s\t%s\t%s", orDash(p.FullName), orDash(p.NickName),
			p.Latitude, p.Longitude, orDash(p.Accuracy), p.Timestamp.Format(time.DateTime),
			p.Battery, p.Charging)
		if origin != nil {
			fmt.Fprintf(tw, "\t%s", distanceFrom(*origin, p.Position))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func distanceFrom(origin coord.Point, pos domain.Position) string {
	p, err := pos.Point()
	if err != nil {
		return "?"
	}
	d := coord.DistanceMeters(origin, p)
	if d < 1000 {
		return fmt.Sprintf("%.0f m", d)
	}
	return fmt.Sprintf("%.1f km", d/1000)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

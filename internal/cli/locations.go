package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/provider"
)

func newLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"loc"},
		Short:   "Business locations",
	}
	cmd.AddCommand(newLocationsListCmd())
	cmd.AddCommand(newLocationsGetCmd())
	cmd.AddCommand(newLocationsFindCmd())
	cmd.AddCommand(newLocationsValidateCmd())
	cmd.AddCommand(newLocationsSetHoursCmd())
	cmd.AddCommand(newLocationsSetContactCmd())
	return cmd
}

func newLocationsListCmd() *cobra.Command {
	var accountFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations of one account, or of every account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}

			var locs []domain.Location
			if accountFlag != "" {
				locs, err = s.client.ListLocations(cmd.Context(), accountFlag, provider.ListOptions{})
			} else {
				locs, err = s.manager.GetAllLocations(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to list locations: %w", err)
			}

			if jsonFlag {
				return printJSON(locs)
			}
			if len(locs) == 0 {
				fmt.Println("No locations found.")
				return nil
			}
			return writeLocations(os.Stdout, locs)
		},
	}
	cmd.Flags().StringVar(&accountFlag, "account", "", "account to list, e.g. accounts/123 (defaults to all)")
	return cmd
}

func newLocationsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [location]",
		Short: "Show one location, e.g. accounts/123/locations/456",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			loc, err := s.client.GetLocation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}
			if jsonFlag {
				return printJSON(loc)
			}
			writeLocationDetail(os.Stdout, loc)
			return nil
		},
	}
}

func newLocationsFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [business name]",
		Short: "Find a location by business name (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			loc, ok, err := s.manager.FindLocationByName(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to find location: %w", err)
			}
			if !ok {
				return fmt.Errorf("location not found: %s", args[0])
			}
			if jsonFlag {
				return printJSON(loc)
			}
			writeLocationDetail(os.Stdout, loc)
			return nil
		},
	}
}

func newLocationsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [location]",
		Short: "Check a location for missing required fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			loc, err := s.client.GetLocation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}
			issues := s.manager.ValidateLocationData(loc)
			if jsonFlag {
				return printJSON(toJSONValidation(args[0], issues))
			}
			writeIssues(os.Stdout, issues)
			return nil
		},
	}
}

func newLocationsSetHoursCmd() *cobra.Command {
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "set-hours [location]",
		Short: "Replace regular business hours from a JSON file",
		Long: "Replace regular business hours. The file holds the regularHours object, e.g.\n" +
			hoursExample +
			"\nUse - to read from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := readHours(fileFlag)
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if _, err := s.manager.UpdateBusinessHours(cmd.Context(), args[0], hours); err != nil {
				return fmt.Errorf("failed to update business hours: %w", err)
			}
			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "set-hours", Location: args[0]})
			}
			fmt.Printf("%s Business hours updated for %s\n", okMark(), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "JSON file with the regularHours object (- for stdin)")
	cmd.MarkFlagRequired("file")
	return cmd
}

// readHours loads a regularHours object. A document wrapped in
// {"regularHours": ...} is unwrapped.
const hoursExample = `{"periods":[{"openDay":"MONDAY","openTime":{"hours":9},"closeDay":"MONDAY","closeTime":{"hours":17,"minutes":30}}]}`

func readHours(path string) (domain.Record, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open hours file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return decodeHours(r)
}

func decodeHours(r io.Reader) (domain.Record, error) {
	var hours domain.Record
	if err := json.NewDecoder(r).Decode(&hours); err != nil {
		return nil, fmt.Errorf("failed to parse hours: %w", err)
	}
	if inner := hours.Sub("regularHours"); inner != nil {
		hours = inner
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("failed to parse hours: empty document")
	}
	return hours, nil
}

func newLocationsSetContactCmd() *cobra.Command {
	var info domain.ContactInfo

	cmd := &cobra.Command{
		Use:   "set-contact [location]",
		Short: "Update the primary phone and/or website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if _, err := s.manager.UpdateContactInfo(cmd.Context(), args[0], info); err != nil {
				return fmt.Errorf("failed to update contact info: %w", err)
			}
			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "set-contact", Location: args[0]})
			}
			fmt.Printf("%s Contact info updated for %s\n", okMark(), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&info.Phone, "phone", "", "primary phone number")
	cmd.Flags().StringVar(&info.Website, "website", "", "website URL")
	cmd.MarkFlagsOneRequired("phone", "website")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/services/dashboard"
	"github.com/sahilchouksey/partner-hub/utils/patch"
	"github.com/sahilchouksey/partner-hub/utils/validation"
)

type partnershipRow struct {
	model.Partnership
	DerivedStatus dashboard.Status `json:"derivedStatus"`
}

func newPartnershipsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "partnerships",
		Aliases: []string{"p"},
		Short:   "List, show and edit partnership records",
	}
	cmd.AddCommand(newPartnershipsListCmd(c), newPartnershipsGetCmd(c), newPartnershipsUpdateCmd(c))
	return cmd
}

func newPartnershipsListCmd(c *cli) *cobra.Command {
	var college string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List partnerships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if college == "" {
				college = config.GetLookups().AllColleges
			}
			records, err := c.backend.ListPartnerships(c.context(cmd), college)
			if err != nil {
				return err
			}

			now := c.now()
			rows := make([]partnershipRow, len(records))
			for i, p := range records {
				rows[i] = partnershipRow{Partnership: p, DerivedStatus: dashboard.DeriveStatus(p.Status, p.ExpirationDate, now)}
			}
			return c.render(cmd.OutOrStdout(), rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tEXPIRES\tCOUNTRY\tCOLLEGE")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.Name, r.Type, r.DerivedStatus, formatDate(r.ExpirationDate),
						dashboard.NormalizeCountry(dashboard.CountryOf(dashboard.Derived{Record: r.Partnership})), r.InterestedCollege())
				}
			})
		},
	}
	cmd.Flags().StringVarP(&college, "college", "c", "", "limit to one college")
	return cmd
}

func newPartnershipsGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one partnership",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.backend.GetPartnership(c.context(cmd), args[0])
			if err != nil {
				return err
			}
			row := partnershipRow{Partnership: p, DerivedStatus: dashboard.DeriveStatus(p.Status, p.ExpirationDate, c.now())}
			return c.render(cmd.OutOrStdout(), row, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "ID\t%s\n", p.ID)
				fmt.Fprintf(tw, "Name\t%s\n", p.Name)
				fmt.Fprintf(tw, "Type\t%s\n", p.Type)
				fmt.Fprintf(tw, "Status\t%s (%s)\n", row.DerivedStatus, p.Status)
				fmt.Fprintf(tw, "Signed\t%s\n", formatDate(p.SignedDate))
				fmt.Fprintf(tw, "Expires\t%s\n", formatDate(p.ExpirationDate))
				fmt.Fprintf(tw, "Region\t%s\n", p.Region)
				fmt.Fprintf(tw, "Partner\t%s (%s)\n", p.PartnerInstitution.Name, p.PartnerInstitution.Country)
				fmt.Fprintf(tw, "College\t%s\n", p.InterestedCollege())
				fmt.Fprintf(tw, "Contact\t%s <%s>\n", p.AAUContact.Name, p.AAUContact.Email)
			})
		},
	}
}

func newPartnershipsUpdateCmd(c *cli) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update ID --set field=value [--set field=value ...]",
		Short: "Edit a partnership, sending only the fields that changed",
		Long: "Edit a partnership. Nested fields use dots, e.g. --set aauContact.email=a@aau.edu.et.\n" +
			"Unchanged values are not sent; if nothing changed no request is made.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return fmt.Errorf("nothing to update, pass at least one --set")
			}
			ctx := c.context(cmd)
			id := args[0]

			raw, err := c.backend.GetPartnershipRaw(ctx, id)
			if err != nil {
				return err
			}
			var original, edited map[string]interface{}
			if err := json.Unmarshal(raw, &original); err != nil {
				return fmt.Errorf("invalid record from partnership API: %w", err)
			}
			_ = json.Unmarshal(raw, &edited)

			for _, s := range sets {
				key, value, ok := strings.Cut(s, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid --set %q, want field=value", s)
				}
				setPath(edited, strings.Split(key, "."), value)
			}

			if err := validateEdit(edited); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			changes := patch.Diff(original, edited)
			if len(changes) == 0 {
				fmt.Fprintln(out, "No changes detected")
				return nil
			}

			if _, err := c.backend.UpdatePartnership(ctx, id, changes); err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated %s: %s\n", id, strings.Join(changedPaths(changes, ""), ", "))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")
	return cmd
}

// setPath assigns value at path, creating nested objects as needed.
func setPath(m map[string]interface{}, path []string, value string) {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func validateEdit(edited map[string]interface{}) error {
	data, err := json.Marshal(edited)
	if err != nil {
		return err
	}
	var form model.PartnershipForm
	if err := json.Unmarshal(data, &form); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	fields := validation.Struct(&form)
	if fields == nil {
		return nil
	}

	msgs := make([]string, 0, len(fields))
	for field, msg := range fields {
		msgs = append(msgs, field+": "+msg)
	}
	sort.Strings(msgs)
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

func changedPaths(changes map[string]interface{}, prefix string) []string {
	var paths []string
	for key, v := range changes {
		if nested, ok := v.(map[string]interface{}); ok {
			paths = append(paths, changedPaths(nested, prefix+key+".")...)
			continue
		}
		paths = append(paths, prefix+key)
	}
	sort.Strings(paths)
	return paths
}

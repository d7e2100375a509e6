package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var contactPhone string

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage the contact registry",
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <first name> <last name>",
	Short: "Add a contact (or update an existing contact's phone)",
	Args:  cobra.ExactArgs(2),
	RunE:  runContactsAdd,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE:  runContactsList,
}

var contactsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a contact, including conversation summaries",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContactsShow,
}

var contactsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a contact and their conversation collection",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContactsRemove,
}

func init() {
	contactsAddCmd.Flags().StringVar(&contactPhone, "phone", "", "phone number for text messages")
	contactsCmd.AddCommand(contactsAddCmd, contactsListCmd, contactsShowCmd, contactsRemoveCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	contact, err := a.Contacts.Create(ctx, args[0], args[1], contactPhone)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s (key %s)\n", contact.FullName(), contact.Key)
	return nil
}

func runContactsList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Contacts.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no contacts")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tPHONE")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Key, c.FullName(), c.Phone)
	}
	return w.Flush()
}

func runContactsShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	contact, err := a.Contacts.Get(ctx, contactKey(strings.Join(args, " ")))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (key %s)\n", contact.FullName(), contact.Key)
	if contact.Phone != "" {
		fmt.Fprintf(out, "phone: %s\n", contact.Phone)
	}
	if contact.Summary != "" {
		fmt.Fprintf(out, "summary: %s\n", contact.Summary)
	}
	if contact.RecentSummary != "" {
		fmt.Fprintf(out, "most recent conversation: %s\n", contact.RecentSummary)
	}
	return nil
}

func runContactsRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	a, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	key := contactKey(strings.Join(args, " "))
	if err := a.Contacts.Delete(ctx, key); err != nil {
		return err
	}
	// The contact owns their conversation collection; it goes with them.
	if err := a.Corpus.DeleteCollection(ctx, key); err != nil {
		return fmt.Errorf("removing conversation collection: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", key)
	return nil
}

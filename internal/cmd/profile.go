package cmd

import (
	"github.com/quill-social/quill/pkg/service"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile commands",
	Long:  "View profiles and follow or unfollow people",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a profile (default: your own)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := "me"
		if len(args) > 0 {
			id = args[0]
		}
		return service.NewProfileService().ViewProfile(cmd.Context(), id)
	},
}

var profileFollowCmd = &cobra.Command{
	Use:   "follow <id>",
	Short: "Follow a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewProfileService().Follow(cmd.Context(), args[0])
	},
}

var profileUnfollowCmd = &cobra.Command{
	Use:   "unfollow <id>",
	Short: "Unfollow a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewProfileService().Unfollow(cmd.Context(), args[0])
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileFollowCmd)
	profileCmd.AddCommand(profileUnfollowCmd)
}

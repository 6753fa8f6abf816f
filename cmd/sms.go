/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/Daskott/helmetguard/server/twilio"
	"github.com/Daskott/helmetguard/shared"
	"github.com/spf13/cobra"
)

const TEST_MESSAGE = "HelmetGuard SMS Test - If you see this, Twilio is working!"

type smsClient interface {
	NormalizeNumber(phone string) string
	SendMessage(to, msg string) (string, error)
	VerifiedCallerIDs() ([]twilio.CallerID, error)
}

var newSmsClient = func(config shared.TwilioConfig, countryCode string) smsClient {
	return twilio.NewClient(config, countryCode)
}

func init() {
	rootCmd.AddCommand(createSmsCmd())
}

func createSmsCmd() *cobra.Command {
	var (
		to           string
		message      string
		listVerified bool
	)

	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Send a test SMS using the configured Twilio account",
		Long: `Send a test SMS to check Twilio credentials & sender number.

Trial accounts can only send to verified numbers, use --list-verified to see them.`,
		Example: "helmetguard sms --to +919876543210",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if !twilio.Configured(config.Twilio) {
				return formattedError("twilio credentials missing, set TWILIO_SID, TWILIO_AUTH & TWILIO_PHONE")
			}

			client := newSmsClient(config.Twilio, config.HelmetGuard.DefaultCountryCode)

			if listVerified {
				return printVerifiedCallerIDs(cmd, client)
			}

			if to == "" {
				to = config.Twilio.FallbackRecipient
			}
			if to == "" {
				return formattedError("\"to\" not set, pass --to or set USER_PHONE")
			}

			number := client.NormalizeNumber(to)
			cmd.Printf("Sending to %v\n", number)

			sid, err := client.SendMessage(number, message)
			if err != nil {
				return formattedError("SMS failed: %v%v", err, sendFailureHint(err))
			}

			cmd.Println(green(fmt.Sprintf("SUCCESS! Message SID: %v", sid)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "recipient phone number (defaults to USER_PHONE)")
	cmd.Flags().StringVarP(&message, "message", "m", TEST_MESSAGE, "message body")
	cmd.Flags().BoolVar(&listVerified, "list-verified", false, "list verified caller ids instead of sending")

	return cmd
}

func printVerifiedCallerIDs(cmd *cobra.Command, client smsClient) error {
	callerIDs, err := client.VerifiedCallerIDs()
	if err != nil {
		return formattedError("unable to list verified numbers: %v", err)
	}

	if len(callerIDs) == 0 {
		cmd.Println("No verified numbers found")
		return nil
	}

	cmd.Println("Verified numbers:")
	for _, callerID := range callerIDs {
		cmd.Printf("  %v (%v)\n", callerID.PhoneNumber, callerID.FriendlyName)
	}
	return nil
}

func sendFailureHint(err error) string {
	reason := strings.ToLower(err.Error())

	switch {
	case strings.Contains(reason, "unverified"):
		return "\nTrial accounts can only send to verified numbers: https://console.twilio.com/us1/develop/phone-numbers/manage/verified"
	case strings.Contains(reason, "authenticate"):
		return "\nCheck TWILIO_SID & TWILIO_AUTH"
	case strings.Contains(reason, "not a valid phone number"):
		return "\nUse E.164 format, e.g. +919876543210"
	default:
		return ""
	}
}

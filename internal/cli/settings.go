package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/pkg/agenda"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

func (s *session) newSettingsCmd() *cobra.Command {
	var city, country, holidayCountry string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the weather and holiday settings",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			var patch types.SettingsPatch
			if cmd.Flags().Changed("city") {
				patch.WeatherCity = types.Some(city)
			}
			if cmd.Flags().Changed("country") {
				patch.WeatherCountry = types.Some(country)
			}
			if cmd.Flags().Changed("holiday-country") {
				patch.HolidayCountry = types.Some(holidayCountry)
			}
			var (
				st  types.Settings
				err error
			)
			if patch.WeatherCity.Set || patch.WeatherCountry.Set || patch.HolidayCountry.Set {
				st, err = app.Settings.Update(ctx, patch)
			} else {
				st, err = app.Settings.Get(ctx)
			}
			if err != nil {
				return err
			}
			return s.emit(cmd, st, func(w io.Writer) error {
				return table(w, [][]string{
					{"weather city", st.WeatherCity},
					{"weather country", st.WeatherCountry},
					{"holiday country", st.HolidayCountry},
				})
			})
		}),
	}
	cmd.Flags().StringVar(&city, "city", "", "weather city")
	cmd.Flags().StringVar(&country, "country", "", "weather country code")
	cmd.Flags().StringVar(&holidayCountry, "holiday-country", "", "holiday calendar country code")
	return cmd
}

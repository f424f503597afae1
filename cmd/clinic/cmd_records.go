package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
)

func (a *app) recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record"},
		Short:   "Medical records: profile sheet, assessments and immunizations",
	}

	// target is --user when given, else the signed-in user.
	var user string
	target := func() models.ID {
		if user != "" {
			return models.ID(user)
		}
		return a.sess.UserID
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show a medical record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.client.Records.Record(cmd.Context(), target())
			if err != nil {
				return err
			}
			return a.printer.Emit(rec, func() (string, error) { return recordView(rec), nil })
		},
	}
	show.Flags().StringVar(&user, "user", "", "whose record (admin; default yourself)")

	var as models.Assessment
	var assessDate string
	assess := &cobra.Command{
		Use:   "assess",
		Short: "Record a consultation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := as
			in.User = models.ID(user)
			if in.AssessedBy == "" {
				in.AssessedBy = a.sess.Username
			}
			var err error
			if in.Date, err = parseDate("date", assessDate); err != nil {
				return err
			}
			if in.Date.IsZero() {
				in.Date = models.NewDate(a.now().Date())
			}
			out, err := a.client.Records.CreateAssessment(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printer.Emit(out, func() (string, error) {
				return fmt.Sprintf("Recorded assessment %s for user %s.", out.ID, out.User), nil
			})
		},
	}
	f := assess.Flags()
	f.StringVar(&user, "user", "", "patient user ID (required)")
	f.StringVar(&assessDate, "date", "", "consultation date, YYYY-MM-DD (default today)")
	f.StringVar(&as.AssessedBy, "by", "", "who examined the patient (default you)")
	f.StringVar(&as.ChiefComplaint, "complaint", "", "chief complaint")
	f.StringVar(&as.Findings, "findings", "", "findings")
	f.StringVar(&as.Diagnosis, "diagnosis", "", "diagnosis")
	f.StringVar(&as.Recommendation, "recommendation", "", "recommendation")
	f.StringVar(&as.Vitals.BloodPressure, "bp", "", "blood pressure, e.g. 120/80")
	f.Float64Var(&as.Vitals.Temperature, "temp", 0, "temperature in °C")
	f.IntVar(&as.Vitals.PulseRate, "pulse", 0, "pulse rate per minute")
	f.IntVar(&as.Vitals.RespiratoryRate, "resp", 0, "respiratory rate per minute")

	var im models.Immunization
	var given, nextDue string
	immunize := &cobra.Command{
		Use:   "immunize",
		Short: "Record a vaccine dose",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := im
			in.User = models.ID(user)
			var err error
			if in.DateAdministered, err = parseDate("date", given); err != nil {
				return err
			}
			if in.DateAdministered.IsZero() {
				in.DateAdministered = models.NewDate(a.now().Date())
			}
			if in.NextDue, err = parseDate("next-due", nextDue); err != nil {
				return err
			}
			if in.AdministeredBy == "" {
				in.AdministeredBy = a.sess.Username
			}
			out, err := a.client.Records.CreateImmunization(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printer.Emit(out, func() (string, error) {
				return fmt.Sprintf("Recorded %s for user %s.", out.Vaccine, out.User), nil
			})
		},
	}
	f = immunize.Flags()
	f.StringVar(&user, "user", "", "patient user ID (required)")
	f.StringVar(&im.Vaccine, "vaccine", "", "vaccine name")
	f.StringVar(&im.Dose, "dose", "", "dose, e.g. 2nd")
	f.StringVar(&im.AdministeredBy, "by", "", "who gave it (default you)")
	f.StringVar(&given, "date", "", "date given, YYYY-MM-DD (default today)")
	f.StringVar(&nextDue, "next-due", "", "next dose due, YYYY-MM-DD")

	var mp models.MedicalProfilePatch
	var blood, allergies, conditions, meds, ecName, ecNumber string
	var height, weight float64
	editProfile := &cobra.Command{
		Use:   "edit-profile",
		Short: "Update a medical profile sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strs := map[string]struct {
				src *string
				dst **string
			}{
				"blood-type":        {&blood, &mp.BloodType},
				"allergies":         {&allergies, &mp.Allergies},
				"conditions":        {&conditions, &mp.Conditions},
				"medications":       {&meds, &mp.Medications},
				"emergency-name":    {&ecName, &mp.EmergencyContactName},
				"emergency-contact": {&ecNumber, &mp.EmergencyContactNumber},
			}
			for name, s := range strs {
				if changed(cmd, name) {
					*s.dst = s.src
				}
			}
			if changed(cmd, "height") {
				mp.HeightCM = &height
			}
			if changed(cmd, "weight") {
				mp.WeightKG = &weight
			}
			p, err := a.client.Records.UpdateProfile(cmd.Context(), target(), mp)
			if err != nil {
				return err
			}
			return a.printer.Emit(p, func() (string, error) {
				return recordView(models.MedicalRecord{Profile: p}), nil
			})
		},
	}
	f = editProfile.Flags()
	f.StringVar(&user, "user", "", "whose profile (default yourself)")
	f.StringVar(&blood, "blood-type", "", "blood type, e.g. O+")
	f.Float64Var(&height, "height", 0, "height in cm")
	f.Float64Var(&weight, "weight", 0, "weight in kg")
	f.StringVar(&allergies, "allergies", "", "known allergies")
	f.StringVar(&conditions, "conditions", "", "existing conditions")
	f.StringVar(&meds, "medications", "", "maintenance medications")
	f.StringVar(&ecName, "emergency-name", "", "emergency contact name")
	f.StringVar(&ecNumber, "emergency-contact", "", "emergency contact number")

	delAssessment := &cobra.Command{
		Use:   "delete-assessment <id>",
		Short: "Delete an assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Records.DeleteAssessment(cmd.Context(), idArg(args)); err != nil {
				return err
			}
			a.printer.Line("Deleted assessment %s.", args[0])
			return nil
		},
	}
	delImmunization := &cobra.Command{
		Use:   "delete-immunization <id>",
		Short: "Delete an immunization entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Records.DeleteImmunization(cmd.Context(), idArg(args)); err != nil {
				return err
			}
			a.printer.Line("Deleted immunization %s.", args[0])
			return nil
		},
	}

	cmd.AddCommand(
		gate(show, nav.Records, nav.Read),
		gate(assess, nav.Records, nav.Manage),
		gate(immunize, nav.Records, nav.Manage),
		gate(editProfile, nav.Records, nav.Manage),
		gate(delAssessment, nav.Records, nav.Manage),
		gate(delImmunization, nav.Records, nav.Manage),
	)
	return cmd
}

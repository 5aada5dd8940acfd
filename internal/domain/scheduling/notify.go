package scheduling

import (
	"fmt"
	"time"
)

// ConfirmationSubject is the subject line of every booking confirmation.
const ConfirmationSubject = "Confirmación de Cita Médica"

// emailDateLayout renders dates the way the clinic prints them, dd/mm/yyyy.
const emailDateLayout = "02/01/2006"

func confirmationBody(patientName, doctorName, specialty string, date time.Time, timeOfDay string) string {
	return fmt.Sprintf(
		"Hola %s,\n\n"+
			"Su cita médica ha sido registrada con éxito.\n\n"+
			"Fecha: %s\n"+
			"Hora: %s\n"+
			"Médico: %s (%s)\n\n"+
			"Por favor llegue con 15 minutos de anticipación.\n\n"+
			"Atentamente,\nSu Clínica",
		patientName,
		date.Format(emailDateLayout),
		timeOfDay,
		doctorName,
		specialty,
	)
}

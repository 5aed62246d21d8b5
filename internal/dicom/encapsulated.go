// Package dicom wraps a report PDF into a DICOM Encapsulated PDF object so it
// can be archived in a PACS next to the echo loops it describes.
package dicom

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/report"
)

// UIDs fixed by the standard.
const (
	EncapsulatedPDFStorage = "1.2.840.10008.5.1.4.1.1.104.1"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
)

const (
	modalityDocument = "DOC"
	manufacturer     = "echoreport"
	studyDescription = "Ecocardiografía transesofágica intraoperatoria"
)

// Document carries the attributes written next to the PDF.
// Dates are YYYYMMDD, times HHMMSS, empty strings are written as empty.
type Document struct {
	Title              string
	PatientName        string // PN format, Family^Given
	PatientID          string
	PatientSex         string // M, F or empty
	PatientAge         string // nnnY or empty
	StudyDate          string
	StudyTime          string
	ContentDate        string
	ContentTime        string
	InstitutionName    string
	ReferringPhysician string
	OperatorName       string

	StudyInstanceUID  string
	SeriesInstanceUID string
	SOPInstanceUID    string
}

// NewDocument derives the DICOM attributes of rec. UIDs are deterministic:
// the same record always produces the same object.
func NewDocument(rec report.Record) Document {
	value := func(section fields.Section, key string) string {
		e, ok := rec.Lookup(section, key)
		if !ok || e.Fallback {
			return ""
		}
		return e.Value
	}

	doc := Document{
		Title:              rec.Title,
		PatientName:        personName(value(fields.SectionPatient, "name")),
		PatientID:          value(fields.SectionPatient, "mrn"),
		PatientSex:         sexCode(value(fields.SectionPatient, "sex")),
		PatientAge:         ageString(value(fields.SectionPatient, "age")),
		ContentDate:        rec.GeneratedAt.Format("20060102"),
		ContentTime:        rec.GeneratedAt.Format("150405"),
		InstitutionName:    value(fields.SectionStudy, "institution"),
		ReferringPhysician: personName(value(fields.SectionStudy, "physician")),
		OperatorName:       personName(value(fields.SectionPatient, "operator")),
	}

	doc.StudyDate = doc.ContentDate
	for _, d := range []string{value(fields.SectionStudy, "date"), value(fields.SectionPatient, "study_date")} {
		if t, err := time.Parse(fields.DateDisplayLayout, d); err == nil {
			doc.StudyDate = t.Format("20060102")
			break
		}
	}
	doc.StudyTime = doc.ContentTime
	if t, err := time.Parse(fields.TimeLayout, value(fields.SectionStudy, "time")); err == nil {
		doc.StudyTime = t.Format("150405")
	}

	seed := strings.Join([]string{
		doc.PatientID, doc.PatientName, doc.StudyDate, doc.StudyTime,
		rec.GeneratedAt.UTC().Format(time.RFC3339Nano), strconv.FormatUint(rec.Revision, 10),
	}, "|")
	doc.StudyInstanceUID = GenerateDeterministicUID(seed + "|study")
	doc.SeriesInstanceUID = GenerateDeterministicUID(seed + "|series")
	doc.SOPInstanceUID = GenerateDeterministicUID(seed + "|instance")

	return doc
}

// personName turns "Ana Diaz Lopez" into "Diaz Lopez^Ana".
func personName(s string) string {
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[1:], " ") + "^" + parts[0]
	}
}

func sexCode(label string) string {
	switch label {
	case "Masculino":
		return "M"
	case "Femenino":
		return "F"
	default:
		return ""
	}
}

func ageString(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 999 {
		return ""
	}
	return fmt.Sprintf("%03dY", n)
}

// mustNewElement wraps dicom.NewElement for tags whose VR is known to match.
func mustNewElement(t tag.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// Dataset builds the Encapsulated PDF dataset.
func Dataset(doc Document, pdf []byte) (dicom.Dataset, error) {
	if len(pdf) == 0 {
		return dicom.Dataset{}, fmt.Errorf("encapsulate: empty document")
	}

	// OB values must have even length.
	payload := pdf
	if len(payload)%2 != 0 {
		payload = append(append(make([]byte, 0, len(pdf)+1), pdf...), 0)
	}

	// Elements are listed in ascending tag order.
	elements := []*dicom.Element{
		mustNewElement(tag.MediaStorageSOPClassUID, []string{EncapsulatedPDFStorage}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{doc.SOPInstanceUID}),
		mustNewElement(tag.TransferSyntaxUID, []string{ExplicitVRLittleEndian}),
		mustNewElement(tag.SpecificCharacterSet, []string{"ISO_IR 192"}),
		mustNewElement(tag.SOPClassUID, []string{EncapsulatedPDFStorage}),
		mustNewElement(tag.SOPInstanceUID, []string{doc.SOPInstanceUID}),
		mustNewElement(tag.StudyDate, []string{doc.StudyDate}),
		mustNewElement(tag.ContentDate, []string{doc.ContentDate}),
		mustNewElement(tag.StudyTime, []string{doc.StudyTime}),
		mustNewElement(tag.ContentTime, []string{doc.ContentTime}),
		mustNewElement(tag.AccessionNumber, []string{""}),
		mustNewElement(tag.Modality, []string{modalityDocument}),
		mustNewElement(tag.ConversionType, []string{"WSD"}),
		mustNewElement(tag.Manufacturer, []string{manufacturer}),
		mustNewElement(tag.InstitutionName, []string{doc.InstitutionName}),
		mustNewElement(tag.ReferringPhysicianName, []string{doc.ReferringPhysician}),
		mustNewElement(tag.StudyDescription, []string{studyDescription}),
		mustNewElement(tag.OperatorsName, []string{doc.OperatorName}),
		mustNewElement(tag.PatientName, []string{doc.PatientName}),
		mustNewElement(tag.PatientID, []string{doc.PatientID}),
		mustNewElement(tag.PatientBirthDate, []string{""}),
		mustNewElement(tag.PatientSex, []string{doc.PatientSex}),
		mustNewElement(tag.PatientAge, []string{doc.PatientAge}),
		mustNewElement(tag.StudyInstanceUID, []string{doc.StudyInstanceUID}),
		mustNewElement(tag.SeriesInstanceUID, []string{doc.SeriesInstanceUID}),
		mustNewElement(tag.StudyID, []string{"1"}),
		mustNewElement(tag.SeriesNumber, []string{"1"}),
		mustNewElement(tag.InstanceNumber, []string{"1"}),
		mustNewElement(tag.BurnedInAnnotation, []string{"YES"}),
		mustNewElement(tag.DocumentTitle, []string{doc.Title}),
		mustNewElement(tag.EncapsulatedDocument, payload),
		mustNewElement(tag.MIMETypeOfEncapsulatedDocument, []string{"application/pdf"}),
	}

	return dicom.Dataset{Elements: elements}, nil
}

// EncapsulatePDF writes doc and pdf as a DICOM Part 10 stream.
func EncapsulatePDF(w io.Writer, doc Document, pdf []byte) error {
	ds, err := Dataset(doc, pdf)
	if err != nil {
		return err
	}
	if err := dicom.Write(w, ds); err != nil {
		return fmt.Errorf("write encapsulated pdf: %w", err)
	}
	return nil
}

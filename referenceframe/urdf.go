package referenceframe

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/framecalc/spatialmath"
)

// DefaultPrecision is the number of decimals printed in origin tags unless FormatOptions says otherwise.
const DefaultPrecision = 12

// FormatOptions controls how numbers are rendered into an origin tag.
type FormatOptions struct {
	// Precision is the number of decimals, zero included. A negative value prints the shortest
	// representation that parses back to the same float. Use DefaultFormatOptions for 12.
	Precision int
	// SuppressNegativeZero prints "0" for values that round to negative zero.
	SuppressNegativeZero bool
}

// DefaultFormatOptions returns 12 decimals with negative zero suppressed.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{Precision: DefaultPrecision, SuppressNegativeZero: true}
}

// formatFloat renders v with trailing zeros trimmed.
func (o FormatOptions) formatFloat(v float64) string {
	prec := o.Precision
	if prec < 0 {
		prec = -1
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if o.SuppressNegativeZero && s == "-0" {
		s = "0"
	}
	return s
}

func (o FormatOptions) formatTriple(a, b, c float64) string {
	return strings.Join([]string{o.formatFloat(a), o.formatFloat(b), o.formatFloat(c)}, " ")
}

// Origin is the XML used in a URDF origin element.
type Origin struct {
	XMLName xml.Name `xml:"origin"`
	XYZ     string   `xml:"xyz,attr"` // "x y z" format, in meters
	RPY     string   `xml:"rpy,attr"` // Fixed frame angle "r p y" format, in radians
}

// NewOrigin extracts the translation and roll-pitch-yaw of t with the given method and formats them.
func NewOrigin(t *spatial.Transform, method spatial.ExtractionMethod, opts FormatOptions) (*Origin, error) {
	res, err := t.XYZRPY(method)
	if err != nil {
		return nil, err
	}
	return NewOriginFromXYZRPY(res, opts), nil
}

// NewOriginFromXYZRPY formats an already extracted translation and orientation.
func NewOriginFromXYZRPY(res spatial.XYZRPY, opts FormatOptions) *Origin {
	p, o := res.Translation, res.Orientation
	return &Origin{
		XYZ: opts.formatTriple(p.X, p.Y, p.Z),
		RPY: opts.formatTriple(o.Roll, o.Pitch, o.Yaw),
	}
}

// String renders the self closing tag, <origin xyz="x y z" rpy="r p y" />.
func (o *Origin) String() string {
	return fmt.Sprintf(`<origin xyz="%s" rpy="%s" />`, o.XYZ, o.RPY)
}

// ParseOrigin reads an origin element such as the one produced by Origin.String.
func ParseOrigin(s string) (*Origin, error) {
	o := &Origin{}
	if err := xml.Unmarshal([]byte(s), o); err != nil {
		return nil, errors.Wrap(ErrBadOrigin, err.Error())
	}
	if _, err := o.Transform(); err != nil {
		return nil, err
	}
	return o, nil
}

// Transform parses the attributes back into a transform.
func (o *Origin) Transform() (*spatial.Transform, error) {
	xyz, err := parseTriple("xyz", o.XYZ)
	if err != nil {
		return nil, err
	}
	rpy, err := parseTriple("rpy", o.RPY)
	if err != nil {
		return nil, err
	}
	return spatial.NewTransformFromXYZRPY(
		r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		&spatial.EulerAngles{Roll: rpy[0], Pitch: rpy[1], Yaw: rpy[2]},
	), nil
}

// parseTriple reads a space delimited attribute. URDF treats a missing attribute as zeros.
func parseTriple(attr, s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return []float64{0, 0, 0}, nil
	}
	values := spaceDelimitedStringToFloatSlice(s)
	if len(values) != 3 {
		return nil, errors.Wrapf(ErrBadOrigin, "%s attribute %q needs 3 values, got %d", attr, s, len(values))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrBadOrigin, "%s attribute %q is not numeric", attr, s)
		}
	}
	return values, nil
}

// spaceDelimitedStringToFloatSlice is a helper method to split up space-delimited fields in a string and converts them to floats.
func spaceDelimitedStringToFloatSlice(s string) []float64 {
	var converted []float64
	slice := strings.Fields(s)
	for _, value := range slice {
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			value = math.NaN()
		}
		converted = append(converted, value)
	}
	return converted
}

// URDFLink names a link referenced from a joint.
type URDFLink struct {
	Link string `xml:"link,attr"`
}

// Joint is the XML used in a URDF joint element. Only fixed joints are produced here.
type Joint struct {
	XMLName xml.Name `xml:"joint"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Parent  URDFLink `xml:"parent"`
	Child   URDFLink `xml:"child"`
	Origin  *Origin  `xml:"origin,omitempty"`
}

// NewFixedJoint returns a fixed joint placing child relative to parent. The origin's transform is
// parent_T_child.
func NewFixedJoint(name, parent, child string, origin *Origin) *Joint {
	return &Joint{
		Name:   name,
		Type:   "fixed",
		Parent: URDFLink{Link: parent},
		Child:  URDFLink{Link: child},
		Origin: origin,
	}
}

// String renders the joint as indented XML.
func (j *Joint) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<joint name=%q type=%q>\n", j.Name, j.Type)
	fmt.Fprintf(&sb, "  <parent link=%q />\n", j.Parent.Link)
	fmt.Fprintf(&sb, "  <child link=%q />\n", j.Child.Link)
	if j.Origin != nil {
		fmt.Fprintf(&sb, "  %s\n", j.Origin)
	}
	sb.WriteString("</joint>")
	return sb.String()
}

// ParseJoint reads a joint element.
func ParseJoint(s string) (*Joint, error) {
	j := &Joint{}
	if err := xml.Unmarshal([]byte(s), j); err != nil {
		return nil, errors.Wrap(err, "couldn't parse joint xml")
	}
	if j.Origin != nil {
		if _, err := j.Origin.Transform(); err != nil {
			return nil, err
		}
	}
	return j, nil
}

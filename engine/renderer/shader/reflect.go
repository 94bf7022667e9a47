// Package shader reads the resource interface of WGSL source: the bind group declarations and the
// annotated entry points. The renderer uses it to reject custom shaders that do not fit a pipeline
// layout before they reach the GPU.
package shader

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrBindingMismatch is returned when a declared binding does not match the pipeline layout.
	ErrBindingMismatch = errors.New("binding does not match pipeline layout")
	// ErrEntryPointNotAnnotated is returned when an entry point lacks its @vertex or @fragment attribute.
	ErrEntryPointNotAnnotated = errors.New("entry point is not annotated")
)

// Binding is one @group/@binding declaration.
type Binding struct {
	Group uint32
	// Name is the WGSL variable name.
	Name string
	// Type is the declared WGSL type, e.g. "texture_2d<f32>".
	Type string
	// Entry is the layout entry the declaration implies. Visibility is left zero.
	Entry wgpu.BindGroupLayoutEntry
}

// Kind names the resource category of the binding.
func (b Binding) Kind() string {
	switch {
	case b.Entry.Buffer.Type == wgpu.BufferBindingTypeUniform:
		return "uniform buffer"
	case b.Entry.Buffer.Type != wgpu.BufferBindingTypeUndefined:
		return "storage buffer"
	case b.Entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return "sampler"
	case isStorageTexture(b.Type):
		return "storage texture"
	case b.Entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
		return "texture"
	default:
		return "unknown"
	}
}

func (b Binding) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d) %s: %s", b.Group, b.Entry.Binding, b.Name, b.Type)
}

// Reflection is the resource interface of one WGSL module.
type Reflection struct {
	// Bindings are sorted by group, then binding.
	Bindings []Binding
	// VertexEntryPoints lists the @vertex functions in source order.
	VertexEntryPoints []string
	// FragmentEntryPoints lists the @fragment functions in source order.
	FragmentEntryPoints []string
}

// Reflect parses the declarations of source. Comments are ignored. Declarations the parser does not
// recognize are skipped; it never fails.
//
// Parameters:
//   - source: WGSL source
//
// Returns:
//   - Reflection: the bindings and entry points found
func Reflect(source string) Reflection {
	cleaned := stripComments(source)

	var r Reflection
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		binding, err := strconv.ParseUint(match[2], 10, 32)
		if err != nil {
			continue
		}
		typeName := strings.TrimSpace(match[5])
		r.Bindings = append(r.Bindings, Binding{
			Group: uint32(group),
			Name:  strings.TrimSpace(match[4]),
			Type:  typeName,
			Entry: classifyResource(uint32(binding), strings.TrimSpace(match[3]), typeName),
		})
	}
	slices.SortStableFunc(r.Bindings, func(a, b Binding) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Entry.Binding) - int(b.Entry.Binding)
	})

	r.VertexEntryPoints = entryPoints(vertexEntryRegex, cleaned)
	r.FragmentEntryPoints = entryPoints(fragmentEntryRegex, cleaned)
	return r
}

// Lookup returns the binding declared at (group, binding).
func (r Reflection) Lookup(group, binding uint32) (Binding, bool) {
	for _, b := range r.Bindings {
		if b.Group == group && b.Entry.Binding == binding {
			return b, true
		}
	}
	return Binding{}, false
}

// CheckLayout verifies that every binding r declares exists in layout with the same resource
// category. A shader may declare fewer bindings than the layout provides.
//
// Parameters:
//   - layout: the bindings the pipeline layout provides
//
// Returns:
//   - error: the joined mismatches, each wrapping ErrBindingMismatch, or nil
func (r Reflection) CheckLayout(layout Reflection) error {
	var errs []error
	for _, b := range r.Bindings {
		want, ok := layout.Lookup(b.Group, b.Entry.Binding)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: not provided: %w", b, ErrBindingMismatch))
			continue
		}
		if !compatible(b, want) {
			errs = append(errs, fmt.Errorf("%s: want %s %s: %w", b, want.Kind(), want.Type, ErrBindingMismatch))
		}
	}
	return errors.Join(errs...)
}

// CheckEntryPoints verifies that vertex and fragment are annotated entry points of r.
//
// Parameters:
//   - vertex: the vertex stage function name
//   - fragment: the fragment stage function name
//
// Returns:
//   - error: wraps ErrEntryPointNotAnnotated, or nil
func (r Reflection) CheckEntryPoints(vertex, fragment string) error {
	if !slices.Contains(r.VertexEntryPoints, vertex) {
		return fmt.Errorf("@vertex %s: %w", vertex, ErrEntryPointNotAnnotated)
	}
	if !slices.Contains(r.FragmentEntryPoints, fragment) {
		return fmt.Errorf("@fragment %s: %w", fragment, ErrEntryPointNotAnnotated)
	}
	return nil
}

func isStorageTexture(typeName string) bool {
	return strings.HasPrefix(typeName, "texture_storage_")
}

func compatible(gotBinding, wantBinding Binding) bool {
	got, want := gotBinding.Entry, wantBinding.Entry
	switch {
	case want.Buffer.Type != wgpu.BufferBindingTypeUndefined:
		return got.Buffer.Type == want.Buffer.Type
	case want.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return got.Sampler.Type != wgpu.SamplerBindingTypeUndefined &&
			(got.Sampler.Type == wgpu.SamplerBindingTypeComparison) == (want.Sampler.Type == wgpu.SamplerBindingTypeComparison)
	case isStorageTexture(wantBinding.Type):
		return strings.ReplaceAll(gotBinding.Type, " ", "") == strings.ReplaceAll(wantBinding.Type, " ", "")
	case want.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
		return got.Texture.SampleType == want.Texture.SampleType &&
			got.Texture.ViewDimension == want.Texture.ViewDimension &&
			got.Texture.Multisampled == want.Texture.Multisampled
	}
	return false
}

package model

// Manifest describes the capabilities of an add-on (§3, GLOSSARY).
// Field layout is adapted from the teacher's addon-serving Manifest struct,
// which declares exactly the same shape whether an add-on is being served
// (teacher) or consumed (this runtime).
type Manifest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	ResourceItems []ResourceItem `json:"resources,omitempty"`

	Types    []string      `json:"types"`
	Catalogs []CatalogItem `json:"catalogs"`

	IDPrefixes    []string      `json:"idPrefixes,omitempty"`
	Background    string        `json:"background,omitempty"`
	Logo          string        `json:"logo,omitempty"`
	ContactEmail  string        `json:"contactEmail,omitempty"`
	BehaviorHints BehaviorHints `json:"behaviorHints,omitempty"`
}

// Clone returns a deep copy of m, matching the teacher's hand-written
// clone() convention (no reflection-based deep-copy library: see SPEC_FULL.md).
func (m Manifest) Clone() Manifest {
	var resourceItems []ResourceItem
	if m.ResourceItems != nil {
		resourceItems = make([]ResourceItem, len(m.ResourceItems))
		for i, ri := range m.ResourceItems {
			resourceItems[i] = ri.Clone()
		}
	}
	var types []string
	if m.Types != nil {
		types = append([]string(nil), m.Types...)
	}
	var catalogs []CatalogItem
	if m.Catalogs != nil {
		catalogs = make([]CatalogItem, len(m.Catalogs))
		for i, c := range m.Catalogs {
			catalogs[i] = c.Clone()
		}
	}
	var idPrefixes []string
	if m.IDPrefixes != nil {
		idPrefixes = append([]string(nil), m.IDPrefixes...)
	}
	return Manifest{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Version:       m.Version,
		ResourceItems: resourceItems,
		Types:         types,
		Catalogs:      catalogs,
		IDPrefixes:    idPrefixes,
		Background:    m.Background,
		Logo:          m.Logo,
		ContactEmail:  m.ContactEmail,
		BehaviorHints: m.BehaviorHints,
	}
}

// IsResourceSupported reports whether this manifest declares support for the
// given resource path: the resource name, the type, and (when the manifest
// declares id prefixes) a matching prefix (§4.4 AllOfResource).
func (m Manifest) IsResourceSupported(path ResourcePath) bool {
	supported := false
	for _, ri := range m.ResourceItems {
		if ri.Name != path.Resource {
			continue
		}
		for _, t := range ri.Types {
			if t == path.Type {
				supported = true
				break
			}
		}
		if supported {
			prefixes := ri.IDPrefixes
			if len(prefixes) == 0 {
				prefixes = m.IDPrefixes
			}
			if len(prefixes) == 0 {
				return true
			}
			for _, prefix := range prefixes {
				if hasPrefix(path.ID, prefix) {
					return true
				}
			}
			supported = false
		}
	}
	return false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// ResourceItem declares one resource (e.g. "catalog") and the types/id
// prefixes it's offered for.
type ResourceItem struct {
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	IDPrefixes []string `json:"idPrefixes,omitempty"`
}

// Clone returns a deep copy of ri.
func (ri ResourceItem) Clone() ResourceItem {
	var types []string
	if ri.Types != nil {
		types = append([]string(nil), ri.Types...)
	}
	var idPrefixes []string
	if ri.IDPrefixes != nil {
		idPrefixes = append([]string(nil), ri.IDPrefixes...)
	}
	return ResourceItem{Name: ri.Name, Types: types, IDPrefixes: idPrefixes}
}

// BehaviorHints carries manifest-level flags such as "adult" or "p2p".
type BehaviorHints struct {
	Adult                 bool `json:"adult,omitempty"`
	P2P                   bool `json:"p2p,omitempty"`
	Configurable          bool `json:"configurable,omitempty"`
	ConfigurationRequired bool `json:"configurationRequired,omitempty"`
}

// CatalogItem represents a catalog (GLOSSARY "Catalog").
type CatalogItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`

	Extra []ExtraItem `json:"extra,omitempty"`
}

// Clone returns a deep copy of ci.
func (ci CatalogItem) Clone() CatalogItem {
	var extra []ExtraItem
	if ci.Extra != nil {
		extra = make([]ExtraItem, len(ci.Extra))
		for i, e := range ci.Extra {
			extra[i] = e.Clone()
		}
	}
	return CatalogItem{Type: ci.Type, ID: ci.ID, Name: ci.Name, Extra: extra}
}

// IsExtraSupported reports whether every requested extra is declared by this
// catalog, honoring IsRequired (§4.4 AllCatalogs).
func (ci CatalogItem) IsExtraSupported(requested []ExtraValue) bool {
	for _, ei := range ci.Extra {
		if !ei.IsRequired {
			continue
		}
		found := false
		for _, rv := range requested {
			if rv.Name == ei.Name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, rv := range requested {
		declared := false
		for _, ei := range ci.Extra {
			if ei.Name == rv.Name {
				declared = true
				break
			}
		}
		if !declared {
			return false
		}
	}
	return true
}

// AreExtraNamesSupported reports whether every named extra is declared by
// this catalog, ignoring whether it's required (§4.4 CatalogsFiltered).
func (ci CatalogItem) AreExtraNamesSupported(names []string) bool {
	for _, name := range names {
		declared := false
		for _, ei := range ci.Extra {
			if ei.Name == name {
				declared = true
				break
			}
		}
		if !declared {
			return false
		}
	}
	return true
}

// ExtraItem declares one extra a catalog accepts.
type ExtraItem struct {
	Name string `json:"name"`

	IsRequired   bool     `json:"isRequired,omitempty"`
	Options      []string `json:"options,omitempty"`
	OptionsLimit int      `json:"optionsLimit,omitempty"`
}

// Clone returns a deep copy of ei.
func (ei ExtraItem) Clone() ExtraItem {
	var options []string
	if ei.Options != nil {
		options = append([]string(nil), ei.Options...)
	}
	return ExtraItem{Name: ei.Name, IsRequired: ei.IsRequired, Options: options, OptionsLimit: ei.OptionsLimit}
}

// DescriptorFlags carries the flags stored alongside a Descriptor (§3), e.g.
// whether it's an official add-on and whether it's protected from removal.
type DescriptorFlags struct {
	Official  bool `json:"official,omitempty"`
	Protected bool `json:"protected,omitempty"`
}

// Descriptor is { transport_url, manifest, flags }, identified by
// transport_url (§3, GLOSSARY).
type Descriptor struct {
	TransportURL string          `json:"transportUrl"`
	Manifest     Manifest        `json:"manifest"`
	Flags        DescriptorFlags `json:"flags"`
}

// Equal is a full field-wise comparison, hand-written rather than
// reflection-based to match Clone's convention (see package comment on
// Manifest.Clone). Used by the install-addon idempotency check (§8.1): only
// a Descriptor byte-for-byte identical to the one already installed is a
// true no-op.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.TransportURL == other.TransportURL &&
		d.Flags == other.Flags &&
		d.Manifest.Equal(other.Manifest)
}

// Equal is a full field-wise comparison of m against other, including the
// slice-valued fields Clone deep-copies.
func (m Manifest) Equal(other Manifest) bool {
	if m.ID != other.ID || m.Name != other.Name || m.Description != other.Description ||
		m.Version != other.Version || m.Background != other.Background ||
		m.Logo != other.Logo || m.ContactEmail != other.ContactEmail ||
		m.BehaviorHints != other.BehaviorHints {
		return false
	}
	if !equalStrings(m.Types, other.Types) || !equalStrings(m.IDPrefixes, other.IDPrefixes) {
		return false
	}
	if len(m.ResourceItems) != len(other.ResourceItems) {
		return false
	}
	for i, ri := range m.ResourceItems {
		if !ri.Equal(other.ResourceItems[i]) {
			return false
		}
	}
	if len(m.Catalogs) != len(other.Catalogs) {
		return false
	}
	for i, c := range m.Catalogs {
		if !c.Equal(other.Catalogs[i]) {
			return false
		}
	}
	return true
}

// Equal compares ri against other field-wise.
func (ri ResourceItem) Equal(other ResourceItem) bool {
	return ri.Name == other.Name &&
		equalStrings(ri.Types, other.Types) &&
		equalStrings(ri.IDPrefixes, other.IDPrefixes)
}

// Equal compares ci against other field-wise.
func (ci CatalogItem) Equal(other CatalogItem) bool {
	if ci.Type != other.Type || ci.ID != other.ID || ci.Name != other.Name {
		return false
	}
	if len(ci.Extra) != len(other.Extra) {
		return false
	}
	for i, e := range ci.Extra {
		if !e.Equal(other.Extra[i]) {
			return false
		}
	}
	return true
}

// Equal compares ei against other field-wise.
func (ei ExtraItem) Equal(other ExtraItem) bool {
	return ei.Name == other.Name &&
		ei.IsRequired == other.IsRequired &&
		ei.OptionsLimit == other.OptionsLimit &&
		equalStrings(ei.Options, other.Options)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

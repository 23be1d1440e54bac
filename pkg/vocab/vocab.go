// Package vocab holds the IRIs the registry graph is built from.
package vocab

// Namespace prefixes.
const (
	RDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSD    = "http://www.w3.org/2001/XMLSchema#"
	Schema = "http://schema.org/"
)

// RDF core terms.
const (
	RDFType = RDF + "type"

	XSDString = XSD + "string"
)

// Class IRIs.
const (
	// CreativeWork types the registry root.
	CreativeWork = Schema + "CreativeWork"

	// ItemList types the node aggregating every registered profile.
	ItemList = Schema + "ItemList"

	// ListItem types each registered profile URI.
	ListItem = Schema + "ListItem"
)

// Property IRIs.
const (
	HasPart         = Schema + "hasPart"
	IsPartOf        = Schema + "isPartOf"
	Name            = Schema + "name"
	ItemListElement = Schema + "itemListElement"
	Item            = Schema + "item"
)

// Registry node identifiers.
const (
	// Root is the synthetic subject of the registry document.
	Root = "./"

	// ListRegistry is the blank node label of the registry item list.
	ListRegistry = "listregistry"

	// ListRegistryName is the human readable name of ListRegistry.
	ListRegistryName = "registry of all profiles"
)

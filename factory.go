package archway

// factory implements the factory pattern for archway components and
// stores, mirroring the teacher's global Factory idiom.
type factory struct{}

// Factory is the global factory instance for creating archway stores.
var Factory factory

// NewStore creates a new EntityStore, applying any StoreOptions given.
func (f factory) NewStore(opts ...StoreOption) *Store {
	return NewStore(opts...)
}

// FactoryNewComponent derives a ComponentType[T] for namespace.name,
// matching the teacher's FactoryNewComponent[T] call shape. Go methods
// cannot carry their own type parameters, so this stays a package-level
// function rather than a factory method.
func FactoryNewComponent[T any](namespace, name string) ComponentType[T] {
	return NewComponentType[T](namespace, name)
}

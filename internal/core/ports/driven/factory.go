package driven

// ConnectorBuilder creates a Connector reading from the given input directory.
type ConnectorBuilder func(inputDir string) (Connector, error)

// WriterBuilder creates a GalaxyWriter targeting the given output path.
type WriterBuilder func(outputPath string) (GalaxyWriter, error)

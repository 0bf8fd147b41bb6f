package zbar

type processorConfig struct {
	sym   SymbolType
	cfg   Config
	value int
}

// ProcessorBuilder collects processor options. Build applies them in a
// fixed order regardless of the order the With methods were called in:
// size, interface version, IO mode, forced formats, then decoder settings
// in call order.
type ProcessorBuilder struct {
	threaded bool
	size     *[2]uint
	iface    *InterfaceVersion
	iomode   *IOMode
	formats  *[2]Format
	configs  []processorConfig
	handler  DataHandler
	trace    func(step string)
}

func NewProcessorBuilder() *ProcessorBuilder {
	return &ProcessorBuilder{}
}

// Threaded makes libzbar run capture and display on a background thread.
func (b *ProcessorBuilder) Threaded(threaded bool) *ProcessorBuilder {
	b.threaded = threaded
	return b
}

func (b *ProcessorBuilder) WithSize(width, height uint) *ProcessorBuilder {
	b.size = &[2]uint{width, height}
	return b
}

func (b *ProcessorBuilder) WithInterfaceVersion(version InterfaceVersion) *ProcessorBuilder {
	b.iface = &version
	return b
}

func (b *ProcessorBuilder) WithIOMode(mode IOMode) *ProcessorBuilder {
	b.iomode = &mode
	return b
}

func (b *ProcessorBuilder) WithFormat(input, output Format) *ProcessorBuilder {
	b.formats = &[2]Format{input, output}
	return b
}

func (b *ProcessorBuilder) WithConfig(sym SymbolType, cfg Config, value int) *ProcessorBuilder {
	b.configs = append(b.configs, processorConfig{sym: sym, cfg: cfg, value: value})
	return b
}

// WithDataHandler registers a frame callback once every setting is applied.
func (b *ProcessorBuilder) WithDataHandler(fn DataHandler) *ProcessorBuilder {
	b.handler = fn
	return b
}

func (b *ProcessorBuilder) steps() []buildStep[*Processor] {
	var steps []buildStep[*Processor]
	if b.size != nil {
		w, h := b.size[0], b.size[1]
		steps = append(steps, buildStep[*Processor]{"request_size", func(p *Processor) error {
			return p.RequestSize(w, h)
		}})
	}
	if b.iface != nil {
		v := *b.iface
		steps = append(steps, buildStep[*Processor]{"request_interface", func(p *Processor) error {
			return p.RequestInterface(v)
		}})
	}
	if b.iomode != nil {
		m := *b.iomode
		steps = append(steps, buildStep[*Processor]{"request_iomode", func(p *Processor) error {
			return p.RequestIOMode(m)
		}})
	}
	if b.formats != nil {
		in, out := b.formats[0], b.formats[1]
		steps = append(steps, buildStep[*Processor]{"force_format", func(p *Processor) error {
			return p.ForceFormat(in, out)
		}})
	}
	for _, c := range b.configs {
		steps = append(steps, buildStep[*Processor]{"set_config " + c.sym.String() + "." + c.cfg.String(), func(p *Processor) error {
			return p.SetConfig(c.sym, c.cfg, c.value)
		}})
	}
	if b.handler != nil {
		fn := b.handler
		steps = append(steps, buildStep[*Processor]{"set_data_handler", func(p *Processor) error {
			return p.SetDataHandler(fn)
		}})
	}
	return steps
}

// Build creates the processor and applies every option. The first failing
// step aborts the build: no later step runs, the processor is destroyed and
// only the error is returned.
func (b *ProcessorBuilder) Build() (*Processor, error) {
	proc, err := NewProcessor(b.threaded)
	if err != nil {
		return nil, err
	}
	if err := runSteps(proc, b.steps(), b.trace); err != nil {
		_ = proc.Close()
		return nil, err
	}
	return proc, nil
}

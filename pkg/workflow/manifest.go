package workflow

import (
	"fmt"

	"github.com/flowforge/flowc/pkg/constants"
	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var manifestLog = logger.New("workflow:manifest")

// Manifest is the full workflow document. Field order matches the emitted
// YAML; the serializer preserves declaration order.
type Manifest struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

type Metadata struct {
	GenerateName string `yaml:"generateName"`
}

type Spec struct {
	Entrypoint string       `yaml:"entrypoint"`
	Volumes    []Volume     `yaml:"volumes"`
	Arguments  ArgumentDecl `yaml:"arguments"`
	Templates  []Template   `yaml:"templates"`
}

type Volume struct {
	Name     string   `yaml:"name"`
	EmptyDir struct{} `yaml:"emptyDir"`
}

// ArgumentDecl declares the workflow-level parameters; values are supplied
// at submission time from the parameters file.
type ArgumentDecl struct {
	Parameters []ArgumentParameter `yaml:"parameters"`
}

type ArgumentParameter struct {
	Name string `yaml:"name"`
}

// Template is either the entrypoint steps template or one step's
// container template.
type Template struct {
	Name           string           `yaml:"name"`
	Steps          [][]ManifestStep `yaml:"steps,omitempty"`
	Inputs         *TemplateIO      `yaml:"inputs,omitempty"`
	Outputs        *TemplateIO      `yaml:"outputs,omitempty"`
	InitContainers []InitContainer  `yaml:"initContainers,omitempty"`
	Script         *ScriptSpec      `yaml:"script,omitempty"`
}

// ManifestStep is one entry of the entrypoint steps template. Inner lists
// of the steps field run in parallel, so each graph group becomes one
// inner list.
type ManifestStep struct {
	Name      string         `yaml:"name"`
	Template  string         `yaml:"template"`
	Arguments *StepArguments `yaml:"arguments,omitempty"`
	When      string         `yaml:"when,omitempty"`
}

type StepArguments struct {
	Parameters []StepParameter `yaml:"parameters,omitempty"`
	Artifacts  []StepArtifact  `yaml:"artifacts,omitempty"`
}

type StepParameter struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type StepArtifact struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
}

type TemplateIO struct {
	Parameters []IOParameter `yaml:"parameters,omitempty"`
	Artifacts  []IOArtifact  `yaml:"artifacts,omitempty"`
}

type IOParameter struct {
	Name      string     `yaml:"name"`
	ValueFrom *ValueFrom `yaml:"valueFrom,omitempty"`
}

type ValueFrom struct {
	Path string `yaml:"path"`
}

type IOArtifact struct {
	Name string      `yaml:"name"`
	Path string      `yaml:"path"`
	S3   *S3Artifact `yaml:"s3,omitempty"`
}

type S3Artifact struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Key      string `yaml:"key"`
}

type InitContainer struct {
	Name               string   `yaml:"name"`
	Image              string   `yaml:"image"`
	Command            []string `yaml:"command"`
	MirrorVolumeMounts bool     `yaml:"mirrorVolumeMounts"`
}

type ScriptSpec struct {
	Image        string        `yaml:"image"`
	Command      []string      `yaml:"command"`
	Source       string        `yaml:"source"`
	Resources    Resources     `yaml:"resources"`
	VolumeMounts []VolumeMount `yaml:"volumeMounts"`
}

type Resources struct {
	Requests ResourceList `yaml:"requests"`
	Limits   ResourceList `yaml:"limits"`
}

type ResourceList struct {
	Memory string `yaml:"memory"`
	CPU    string `yaml:"cpu"`
}

type VolumeMount struct {
	Name      string `yaml:"name"`
	MountPath string `yaml:"mountPath"`
}

// assembleManifest builds the full workflow document from the resolved
// step graph: the engine header, the workflow-parameter declarations, the
// entrypoint steps template mirroring the graph's groups, and one
// container template per step.
func assembleManifest(src, scriptName string, model *scriptModel, groups [][]*WorkflowStep) (*Manifest, error) {
	spec := Spec{
		Entrypoint: hyphenate(model.entryName),
		Volumes:    []Volume{{Name: constants.WorkDirVolume}},
	}
	for _, name := range model.params.Names() {
		spec.Arguments.Parameters = append(spec.Arguments.Parameters, ArgumentParameter{Name: name})
	}

	entry := Template{Name: spec.Entrypoint}
	for _, group := range groups {
		row := make([]ManifestStep, 0, len(group))
		for _, step := range group {
			row = append(row, manifestStep(step))
		}
		entry.Steps = append(entry.Steps, row)
	}
	spec.Templates = append(spec.Templates, entry)

	for _, group := range groups {
		for _, step := range group {
			tmpl, err := buildStepTemplate(src, step)
			if err != nil {
				return nil, err
			}
			spec.Templates = append(spec.Templates, tmpl)
		}
	}

	manifestLog.Printf("Assembled manifest %q: %d templates", scriptName, len(spec.Templates))
	return &Manifest{
		APIVersion: "argoproj.io/v1alpha1",
		Kind:       "Workflow",
		Metadata:   Metadata{GenerateName: constants.GenerateNamePrefix + scriptName + "-"},
		Spec:       spec,
	}, nil
}

// manifestStep renders one entry of the entrypoint steps template. Input
// entries carrying an Origin become references to the producing step's
// outputs instead of repeating a value.
func manifestStep(step *WorkflowStep) ManifestStep {
	args := &StepArguments{}

	for _, p := range step.Inputs.Parameters {
		value := p.Value
		if p.Origin != nil {
			value = fmt.Sprintf("{{steps.%s.outputs.parameters.%s}}", p.Origin.Step, p.Origin.Name)
		}
		args.Parameters = append(args.Parameters, StepParameter{Name: p.Name, Value: value})
	}

	for _, a := range step.Inputs.Artifacts {
		tmp, ok := a.Artifact.(pipeline.TemporaryArtifact)
		if !ok || tmp.Origin == nil {
			// Permanent artifacts carry their storage coordinates on the
			// container template; nothing to pass here.
			continue
		}
		args.Artifacts = append(args.Artifacts, StepArtifact{
			Name: a.Name,
			From: fmt.Sprintf("{{steps.%s.outputs.artifacts.%s}}", tmp.Origin.Step, tmp.Origin.Name),
		})
	}

	out := ManifestStep{
		Name:     step.Name,
		Template: step.TemplateName,
		When:     step.When,
	}
	if len(args.Parameters) > 0 || len(args.Artifacts) > 0 {
		out.Arguments = args
	}
	return out
}

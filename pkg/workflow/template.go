package workflow

import (
	"fmt"

	"github.com/flowforge/flowc/pkg/constants"
	"github.com/flowforge/flowc/pkg/pipeline"
)

// buildStepTemplate renders one step's container template: declared
// inputs, declared outputs with their storage coordinates, the init
// containers that prepare the working directory, and the script spec with
// the rewritten body embedded as source.
func buildStepTemplate(src string, step *WorkflowStep) (Template, error) {
	source, err := rewriteStepBody(src, step)
	if err != nil {
		return Template{}, err
	}

	return Template{
		Name:           step.TemplateName,
		Inputs:         templateInputs(step.Inputs),
		Outputs:        templateOutputs(step.Outputs),
		InitContainers: initContainers(),
		Script: &ScriptSpec{
			Image:   step.Image,
			Command: constants.ScriptCommand,
			Source:  source,
			Resources: Resources{
				Requests: ResourceList{Memory: constants.DefaultMemory, CPU: constants.DefaultCPU},
				Limits:   ResourceList{Memory: constants.DefaultMemory, CPU: constants.DefaultCPU},
			},
			VolumeMounts: []VolumeMount{
				{Name: constants.WorkDirVolume, MountPath: constants.WorkDir},
			},
		},
	}, nil
}

// templateInputs declares the step's inputs. Artifacts are materialized
// under the input directory; permanent ones carry their object-storage
// source so the engine can fetch them directly.
func templateInputs(t *pipeline.Transput) *TemplateIO {
	io := &TemplateIO{}
	for _, p := range t.Parameters {
		io.Parameters = append(io.Parameters, IOParameter{Name: p.Name})
	}
	for _, a := range t.Artifacts {
		artifact := IOArtifact{
			Name: a.Name,
			Path: fmt.Sprintf("%s/%s", constants.WorkDirIn, a.Name),
		}
		if perm, ok := a.Artifact.(pipeline.PermanentArtifact); ok {
			artifact.S3 = &S3Artifact{
				Endpoint: constants.S3Endpoint,
				Bucket:   perm.Root,
				Key:      perm.Path,
			}
		}
		io.Artifacts = append(io.Artifacts, artifact)
	}
	if len(io.Parameters) == 0 && len(io.Artifacts) == 0 {
		return nil
	}
	return io
}

// templateOutputs declares the step's outputs. Parameter values are read
// back from files under the output directory. Permanent artifacts are
// collected from the output directory and uploaded to their coordinates;
// temporary ones stay on the shared volume under their own name.
func templateOutputs(t *pipeline.Transput) *TemplateIO {
	io := &TemplateIO{}
	for _, p := range t.Parameters {
		io.Parameters = append(io.Parameters, IOParameter{
			Name:      p.Name,
			ValueFrom: &ValueFrom{Path: fmt.Sprintf("%s/%s", constants.WorkDirOut, p.Name)},
		})
	}
	for _, a := range t.Artifacts {
		switch artifact := a.Artifact.(type) {
		case pipeline.PermanentArtifact:
			io.Artifacts = append(io.Artifacts, IOArtifact{
				Name: a.Name,
				Path: constants.WorkDirOut,
				S3: &S3Artifact{
					Endpoint: constants.S3Endpoint,
					Bucket:   artifact.Root,
					Key:      artifact.Path,
				},
			})
		case pipeline.TemporaryArtifact:
			io.Artifacts = append(io.Artifacts, IOArtifact{
				Name: a.Name,
				Path: fmt.Sprintf("%s/%s", constants.WorkDirOut, a.Name),
			})
		}
	}
	if len(io.Parameters) == 0 && len(io.Artifacts) == 0 {
		return nil
	}
	return io
}

func initContainers() []InitContainer {
	return []InitContainer{
		{
			Name:               "mkdir",
			Image:              constants.InitImage,
			Command:            []string{"mkdir", "-p", constants.WorkDirOut, constants.WorkDirIn},
			MirrorVolumeMounts: true,
		},
		{
			Name:               "chmod",
			Image:              constants.InitImage,
			Command:            []string{"chmod", "-R", "a+rwX", constants.WorkDir},
			MirrorVolumeMounts: true,
		},
	}
}

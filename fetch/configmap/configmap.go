// Package configmap implements a fetch.Source that serves templates
// stored as keys of a Kubernetes ConfigMap.
package configmap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/byte4ever/staticweaver/fetch"
)

// Source reads template files from the data of one
// ConfigMap. Each file name is a key.
//
// Pattern: Strategy -- implements fetch.Source.
type Source struct {
	clientset kubernetes.Interface
	namespace string
	name      string
}

// New returns a Source for namespace/name.
func New(
	clientset kubernetes.Interface,
	namespace string,
	name string,
) (*Source, error) {
	const errCtx = "creating configmap template source"

	if clientset == nil {
		return nil, fmt.Errorf(
			"%s: clientset must be set", errCtx,
		)
	}

	if namespace == "" || name == "" {
		return nil, fmt.Errorf(
			"%s: namespace and name must be set", errCtx,
		)
	}

	return &Source{
		clientset: clientset,
		namespace: namespace,
		name:      name,
	}, nil
}

// FromLocation builds a Source for a configmap:// location.
func FromLocation(
	clientset kubernetes.Interface,
	loc fetch.Location,
) (*Source, error) {
	return New(clientset, loc.Owner(), loc.Name())
}

// Clientset builds a clientset from kubeconfig. When
// kubeconfig is empty, ~/.kube/config is used outside a
// cluster and the in-cluster config inside one.
func Clientset(kubeconfig string) (kubernetes.Interface, error) {
	const errCtx = "building kubernetes client"

	if kubeconfig == "" {
		if _, ok := os.LookupEnv(
			"KUBERNETES_SERVICE_HOST",
		); !ok {
			kubeconfig = filepath.Join(
				homedir.HomeDir(),
				".kube", "config",
			)
		}
	}

	restConfig, err := clientcmd.BuildConfigFromFlags(
		"", kubeconfig,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: building kubeconfig: %w",
			errCtx, err,
		)
	}

	cs, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cs, nil
}

// Fetch returns the value stored under name, looking at
// Data first and BinaryData second.
func (s *Source) Fetch(
	ctx context.Context,
	name string,
) ([]byte, error) {
	const errCtx = "fetching template from configmap"

	ref := s.namespace + "/" + s.name

	cm, err := s.clientset.CoreV1().
		ConfigMaps(s.namespace).
		Get(ctx, s.name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, fmt.Errorf(
			"%s: configmap %s: %w", errCtx, ref, fetch.ErrNotFound,
		)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, ref, err)
	}

	key := strings.ReplaceAll(name, "/", "_")

	if v, ok := cm.Data[key]; ok {
		return []byte(v), nil
	}

	if v, ok := cm.BinaryData[key]; ok {
		return v, nil
	}

	return nil, fmt.Errorf(
		"%s: key %q in %s: %w", errCtx, key, ref, fetch.ErrNotFound,
	)
}
